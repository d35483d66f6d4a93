package configs

// Configurable marks scope-provided values that mirror a config expression.
type Configurable interface {
	ConfigExpr() string
}
