// Package fsutil provides filesystem helpers for acquiring test sources.
// The copy routines preserve symbolic links as links rather than following
// them, matching how version control clients materialize a worktree.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyTree recursively copies the directory src into dst, creating dst and
// any missing parents. Symbolic links are recreated as links pointing at
// their original targets; file permission bits are preserved. Existing
// destination entries are replaced, so copying into the same tree twice
// behaves like the first copy. A dst nested inside src is excluded from
// its own copy.
func CopyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copying %s: not a directory", src)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dst, err)
	}

	return copyTree(absSrc, absDst, absDst)
}

// copyTree copies the contents of src into dst, both absolute. The skip
// directory is left out, so a destination nested inside the source never
// copies into itself.
func copyTree(src, dst, skip string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if err := copySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if srcPath == skip {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("inspecting %s: %w", srcPath, err)
			}
			if err := os.MkdirAll(dstPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("creating %s: %w", dstPath, err)
			}
			if err := copyTree(srcPath, dstPath, skip); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// copySymlink recreates the link at src as dst with the same target.
// Dangling links are copied as-is; resolving them is the consumer's problem.
func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("reading link %s: %w", src, err)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("creating link %s: %w", dst, err)
	}
	return nil
}

// copyFile copies a regular file, carrying over its permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	// Unlink first: an earlier copy may have left the file read-only,
	// the way git leaves its object files.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
