// Package markdown renders the intermediate line-oriented markup to HTML so a
// converted post can be inspected before it is imported.
package markdown
