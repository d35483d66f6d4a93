package texts

import "os"

const (
	// BackupSuffix names the snapshot taken before a mutating write.
	BackupSuffix = ".novelbak"
	// CompanionSuffix names the durable copy of the full novel kept beside
	// the target so pages can be regenerated later.
	CompanionSuffix = ".novel.txt"
)

func BackupPath(target string) string {
	return target + BackupSuffix
}

func CompanionPath(target string) string {
	return target + CompanionSuffix
}

// ReadDocument reads the host document verbatim.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func WriteDocument(path string, text string) error {
	return os.WriteFile(path, []byte(text), 0644)
}

// Backup copies the target to its backup path, preserving the file mode.
// Best effort crash aid only; there is no atomic commit.
func Backup(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", err
	}
	bak := BackupPath(target)
	if err := os.WriteFile(bak, data, info.Mode().Perm()); err != nil {
		return "", err
	}
	return bak, nil
}
