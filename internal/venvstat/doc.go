// Package venvstat measures the on-disk footprint of installed Python packages.
//
// It walks package directories using fastwalk without following symbolic
// links, attributes sizes to the top-level entries of a site-packages
// directory, and locates candidate environments: the base installation, the
// active virtual environment and sibling directories that look like
// environments.
package venvstat
