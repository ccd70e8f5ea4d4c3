/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestOpenPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(40, 20, color.RGBA{R: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(writeFile(t, "red.png", buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Format != "png" || doc.Width != 40 || doc.Height != 20 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.FrameCount() != 1 || doc.Animated() || doc.Delay(0) != 0 {
		t.Fatalf("still image reported %d frames", doc.FrameCount())
	}
	f := doc.Frame(0)
	if f.Handle == 0 || f.Empty() {
		t.Fatalf("frame = %+v", f)
	}
	if !doc.Frame(5).Empty() {
		t.Fatal("out of range frame should be empty")
	}
	if doc.Bytes != int64(buf.Len()) || doc.HumanSize() == "" {
		t.Fatalf("size = %d", doc.Bytes)
	}
}

func TestOpenBMPAndTIFF(t *testing.T) {
	img := solid(8, 6, color.RGBA{G: 255, A: 255})
	var b, ti bytes.Buffer
	if err := bmp.Encode(&b, img); err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(&ti, img, nil); err != nil {
		t.Fatal(err)
	}
	for name, data := range map[string][]byte{"a.bmp": b.Bytes(), "a.tiff": ti.Bytes()} {
		doc, err := Open(writeFile(t, name, data))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if doc.Width != 8 || doc.Height != 6 {
			t.Fatalf("%s: %dx%d", name, doc.Width, doc.Height)
		}
	}
}

func TestHandlesAreUnique(t *testing.T) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, solid(2, 2, color.White))
	a, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if a.Frame(0).Handle == b.Frame(0).Handle {
		t.Fatal("two documents share a frame handle")
	}
}

func TestGIFFramesAreComposited(t *testing.T) {
	pal := color.Palette{color.Transparent, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}}
	full := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for i := range full.Pix {
		full.Pix[i] = 1
	}
	patch := image.NewPaletted(image.Rect(1, 1, 2, 2), pal)
	patch.Pix[0] = 2
	g := &gif.GIF{
		Image:    []*image.Paletted{full, patch},
		Delay:    []int{10, 25},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 4, Height: 4},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	doc, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if doc.FrameCount() != 2 || !doc.Animated() {
		t.Fatalf("frames = %d", doc.FrameCount())
	}
	if doc.Delay(1) != 250*time.Millisecond {
		t.Fatalf("delay = %v", doc.Delay(1))
	}
	second := doc.Frame(1).Image
	if second.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("frame bounds = %v", second.Bounds())
	}
	if r, _, b, _ := second.At(1, 1).RGBA(); b == 0 || r != 0 {
		t.Fatal("patch pixel not drawn")
	}
	if r, _, _, _ := second.At(3, 3).RGBA(); r == 0 {
		t.Fatal("first frame not kept under the patch")
	}
	if doc.Frame(0).Handle+1 != doc.Frame(1).Handle {
		t.Fatal("frame handles are not consecutive")
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if _, err := Open(writeFile(t, "notes.txt", []byte("hello"))); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("text file: %v", err)
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory")
	}
}

func TestHumanSize(t *testing.T) {
	for in, want := range map[int64]string{
		0:          "0.00 B",
		1023:       "1023.00 B",
		1536:       "1.50 KB",
		1048576:    "1.00 MB",
		5 << 40:    "5.00 TB",
		3 << 50:    "3072.00 TB",
		1073741824: "1.00 GB",
	} {
		if got := HumanSize(in); got != want {
			t.Errorf("HumanSize(%d) = %q, want %q", in, got, want)
		}
	}
}
