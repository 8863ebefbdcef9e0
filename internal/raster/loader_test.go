package raster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestOpenDir_ScansAnnualLayers(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "landcover_2017.tif")
	touch(t, dir, "landcover_2019.tif")
	touch(t, dir, "landcover_2018.tiff")
	touch(t, dir, "readme.txt")
	touch(t, dir, "notayear.tif")

	l, err := OpenDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{2017, 2018, 2019}, l.Years())
}

func TestOpenDir_Empty(t *testing.T) {
	_, err := OpenDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no annual layers")
}

func TestOpenDir_MissingDirectory(t *testing.T) {
	_, err := OpenDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestOpenDir_DuplicateYear(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "modis_2019.tif")
	touch(t, dir, "umd_2019.tif")

	_, err := OpenDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate layers")
}
