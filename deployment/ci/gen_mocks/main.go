package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Run from the module root: go run ./deployment/ci/gen_mocks
// Mocks land in ./mocks/mock<pkg>/mock_<file>.go.

type FileInfo struct {
	Path     string
	Pkg      string
	FileName string
}

var sources = []string{
	"internal/kvstore/store.go",
	"internal/webcache/fetcher.go",
}

const destDir = "./mocks"

func main() {
	timeStart := time.Now()

	var wg sync.WaitGroup
	failed := make(chan string, len(sources))

	for _, src := range sources {
		f, err := describe(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", src, err)
			failed <- src
			continue
		}

		wg.Add(1)
		go func(f FileInfo) {
			defer wg.Done()
			if err := generate(f); err != nil {
				fmt.Fprintf(os.Stderr, "Error generating mock for %s: %v\n", f.Path, err)
				failed <- f.Path
				return
			}
		}(f)
	}

	wg.Wait()
	close(failed)

	n := 0
	for range failed {
		n++
	}

	fmt.Printf("\nTotal execution time: %s\n", time.Since(timeStart))
	if n > 0 {
		os.Exit(1)
	}
}

func describe(path string) (FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Path:     path,
		Pkg:      extractPackage(string(content)),
		FileName: strings.TrimSuffix(filepath.Base(path), ".go"),
	}, nil
}

func generate(f FileInfo) error {
	myPkg := "mock" + f.Pkg
	folderDir := filepath.Join(destDir, myPkg)
	completeDest := filepath.Join(folderDir, "mock_"+f.FileName+".go")

	if err := os.MkdirAll(folderDir, 0o755); err != nil {
		return err
	}

	cmd := exec.Command("go", "run", "go.uber.org/mock/mockgen@v0.5.2",
		"-source="+f.Path,
		"-destination="+completeDest,
		"-package="+myPkg,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return err
	}

	fmt.Printf("Mock generated: %s\n", completeDest)
	return nil
}

func extractPackage(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "package ") {
			return strings.TrimPrefix(line, "package ")
		}
	}
	return ""
}
