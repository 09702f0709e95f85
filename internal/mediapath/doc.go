// Package mediapath holds the pure path functions of the relocation engine:
// remote-to-local path translation, pool classification, and episode code
// extraction. Nothing here touches the filesystem.
package mediapath
