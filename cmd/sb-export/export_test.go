package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"products", "customers"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
		assert.NotNil(t, cmd.Flags().Lookup(outputFlag))
	}
}

func TestOpenOutput(t *testing.T) {
	t.Run("Should default to stdout", func(t *testing.T) {
		w, closeFn, err := openOutput("-")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
		assert.NoError(t, closeFn())
	})

	t.Run("Should create the named file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.csv")

		w, closeFn, err := openOutput(path)
		require.NoError(t, err)
		_, err = w.Write([]byte("id\n"))
		require.NoError(t, err)
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "id\n", string(data))
	})
}
