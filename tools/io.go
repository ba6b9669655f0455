package tools

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

func CreateDirectoryIfDoesNotExist(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}

func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && !info.IsDir()
}

// WriteFileAtomic writes filePath through a temporary sibling file renamed
// into place once write returns. Parent folders are created as needed.
func WriteFileAtomic(filePath string, write func(w io.Writer) error) error {
	dir := filepath.Dir(filePath)
	if err := CreateDirectoryIfDoesNotExist(dir); err != nil {
		return err
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(filePath)+"."+uuid.NewString()+".tmp")
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
