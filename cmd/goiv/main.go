/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"goiv/internal/config"
	"goiv/internal/crash"
	"goiv/internal/geom"
	"goiv/internal/imageio"
	applog "goiv/internal/log"
	"goiv/internal/ui"
	"goiv/internal/version"
)

func usage() {
	fmt.Println("goiv - image viewer with minimap")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goiv version|-v|--version                  Show version")
	fmt.Println("  goiv view [<image>]                        Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  goiv info <image>                          Print format, size and frame count")
	fmt.Println("  goiv minimap <image> <out.png> [W H]       Render the minimap for a W x H view (default 1280 x 800)")
	fmt.Println("  goiv config [init]                         Print the effective config, or write the defaults")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	var current string
	defer crash.Recover(func() crash.Info { return crash.Info{Document: current} })

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("goiv - image viewer with minimap")
			fmt.Println(version.String())
			return
		case "view", "ui":
			if len(args) >= 3 {
				current = args[2]
			}
			if err := ui.Run(current); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "info":
			if len(args) < 3 {
				fmt.Println("info requires <image>")
				usage()
				os.Exit(2)
			}
			current = args[2]
			doc, err := imageio.Open(current)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("File:   %s\n", doc.Path)
			fmt.Printf("Format: %s\n", doc.Format)
			fmt.Printf("Size:   %dx%d\n", doc.Width, doc.Height)
			fmt.Printf("Frames: %d\n", doc.FrameCount())
			fmt.Printf("Bytes:  %s\n", doc.HumanSize())
			return
		case "minimap":
			if len(args) < 4 {
				fmt.Println("minimap requires <image> and <out.png>")
				usage()
				os.Exit(2)
			}
			current = args[2]
			view := geom.Size{W: 1280, H: 800}
			if len(args) >= 6 {
				w, werr := strconv.Atoi(args[4])
				h, herr := strconv.Atoi(args[5])
				if werr != nil || herr != nil || w <= 0 || h <= 0 {
					fmt.Println("view size must be two positive integers")
					os.Exit(2)
				}
				view = geom.Size{W: float64(w), H: float64(h)}
			}
			if err := renderMinimap(cfg, current, args[3], view); err != nil {
				l.Error("minimap failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "config":
			if len(args) >= 3 && args[2] == "init" {
				if err := config.Save(config.Defaults()); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				p, _ := config.ConfigPath()
				fmt.Println("Wrote defaults to", p)
				return
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Print(string(out))
			return
		}
	}

	usage()
}

// renderMinimap lays the image out in a view of the given size, as the
// desktop UI would on open, and writes the minimap raster.
func renderMinimap(cfg config.AppConfig, in, out string, view geom.Size) error {
	s := ui.NewSession(cfg)
	if err := s.Open(in); err != nil {
		return err
	}
	s.Resize(view)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := png.Encode(f, s.RenderMinimap(1)); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Visibility: %s\n", s.Sync.CurrentVisibility())
	fmt.Printf("Viewport:   %v\n", s.View.ViewportRect())
	fmt.Printf("Overlay:    %v\n", s.Sync.Overlay())
	return nil
}
