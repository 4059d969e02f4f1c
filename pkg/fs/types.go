package fs

import (
	"time"
)

// FileType represents the type of a file.
type FileType uint32

const (
	// FileTypeRegular is a regular file
	FileTypeRegular FileType = iota
	// FileTypeDirectory is a directory
	FileTypeDirectory
	// FileTypeSymlink is a symbolic link
	FileTypeSymlink
)

// String returns a string representation of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileMode represents the permission bits of a file.
type FileMode uint32

const (
	// ModeMask is the mask for the file permission bits
	ModeMask FileMode = 0777
	// ModeSetUID is the set-user-ID bit
	ModeSetUID FileMode = 04000
	// ModeSetGID is the set-group-ID bit
	ModeSetGID FileMode = 02000
	// ModeSticky is the sticky bit
	ModeSticky FileMode = 01000
)

// String renders the permission bits in ls style, e.g. "rwxr--r--".
func (m FileMode) String() string {
	const rwx = "rwxrwxrwx"
	buf := make([]byte, 9)
	for i := 0; i < 9; i++ {
		if m&(1<<uint(8-i)) != 0 {
			buf[i] = rwx[i]
		} else {
			buf[i] = '-'
		}
	}
	return string(buf)
}

// FileInfo contains the metadata a backing store reports for one object.
type FileInfo struct {
	// Type is the file type
	Type FileType

	// Mode contains the permission bits
	Mode FileMode

	// Size is the file size in bytes
	Size int64

	// Uid is the user ID of the file's owner
	Uid uint32

	// Gid is the group ID of the file's group
	Gid uint32

	// ModTime is the time of last modification
	ModTime time.Time

	// SymlinkTarget is the link target when Type is FileTypeSymlink
	SymlinkTarget string
}

// IsDir reports whether the object is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Type == FileTypeDirectory
}

// DirEntry represents an entry in a directory listing.
type DirEntry struct {
	// Name is the name of the entry, without any path components
	Name string

	// Info contains the entry's metadata
	Info FileInfo
}
