//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	appName = "nstore"
)

var Default = Build

// Tidy merapikan go.mod dan go.sum.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// Build membangun binary ke bin/.
func Build() error {
	mg.Deps(Tidy)

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(binDir, appName+exeSuffix())
	fmt.Println("Building:", out)

	env := map[string]string{"CGO_ENABLED": "0"}
	return sh.RunWithV(env, "go", "build", "-trimpath", "-o", out, "./cmd/nstore")
}

// Run menjalankan server dengan konfigurasi dari .env.
func Run() error {
	return sh.RunV("go", "run", "./cmd/nstore", "serve")
}

func Test() error {
	fmt.Println("Testing...")
	return sh.RunV("go", "test", "./...", "-count=1", "-race")
}

func Lint() error {
	mg.Deps(Vet)
	return sh.RunV("gofmt", "-l", ".")
}

func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean menghapus hasil build.
func Clean() error {
	return os.RemoveAll(binDir)
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
