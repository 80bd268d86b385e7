package port

type FileStore interface {
	// EnsureDir creates dir and its parents if missing.
	EnsureDir(dir string) error
	// ListImages returns the sorted paths of eligible image files directly inside dir. A missing dir yields none.
	ListImages(dir string) ([]string, error)
	// Move relocates a file into dir, keeping its name.
	Move(path, dir string) (string, error)
}
