package logs

// Span identifies one logical operation for log correlation. Spans travel
// in the context and are attached to every record by Handler.
type Span string

type spanKeyType struct{}

var SpanKey spanKeyType
