// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Shader manages a single WGSL shader module, which can
// have multiple entry points.
type Shader struct {
	// Name of the shader, used as its label.
	Name string

	// Code is the final WGSL source, after includes.
	Code string

	module *wgpu.ShaderModule
}

// NewShader returns a new Shader with the given name.
func NewShader(name string) *Shader {
	return &Shader{Name: name}
}

// OpenCode compiles the given WGSL code on the device.
func (sh *Shader) OpenCode(dev *Device, code string) error {
	sh.Release()
	module, err := dev.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu.Shader %s: compile failed: %w", sh.Name, err)
	}
	sh.Code = code
	sh.module = module
	return nil
}

// OpenFS opens and compiles the given file from the file system,
// processing any #include statements relative to it.
func (sh *Shader) OpenFS(dev *Device, fsys fs.FS, fname string) error {
	b, err := fs.ReadFile(fsys, fname)
	if err != nil {
		return fmt.Errorf("gpu.Shader %s: %w", sh.Name, err)
	}
	code := IncludeFS(fsys, filepath.Dir(fname), string(b))
	return sh.OpenCode(dev, code)
}

// Module returns the compiled shader module.
func (sh *Shader) Module() *wgpu.ShaderModule { return sh.module }

// Release releases the shader module.
func (sh *Shader) Release() {
	if sh.module != nil {
		sh.module.Release()
		sh.module = nil
	}
}

// IncludeFS processes #include "file" statements in
// the given code string, using the given file system
// and default path to locate the included files.
func IncludeFS(fsys fs.FS, path, code string) string {
	fl := strings.Split(code, "\n")
	nl := len(fl)
	for li := nl - 1; li >= 0; li-- {
		ln := fl[li]
		if !strings.HasPrefix(ln, `#include "`) {
			continue
		}
		fn := ln[10:]
		qi := strings.Index(fn, `"`)
		if qi < 0 {
			slog.Error("IncludeFS: malformed #include: no final quote")
			continue
		}
		fname := fn[:qi]
		b, err := fs.ReadFile(fsys, fname)
		if err != nil {
			b, err = fs.ReadFile(fsys, filepath.Join(path, fname))
			if err != nil {
				slog.Error("IncludeFS: could not find include", "file", fname, "path", path)
				continue
			}
		}
		ol := strings.Split(string(b), "\n")
		fl[li] = "// " + ln
		fl = slices.Insert(fl, li+1, ol...)
	}
	return strings.Join(fl, "\n")
}
