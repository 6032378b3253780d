// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command console is the desktop table browser of the campus admin
// console. Files named on the command line are opened at startup.
package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"

	"campusadmin/config"
	"campusadmin/internal/logging"
	"campusadmin/windows"
)

func main() {
	configDir := flag.String("config", ".", "Directory holding config.toml and config/.env.<env>")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)
	logger.Info("starting console", "env", cfg.Env, "exportDir", cfg.ExportDir)

	m := windows.NewMainWindow(app.NewWithID(windows.AppID), cfg, logger)
	if cfg.DeltaSharingProfile != "" {
		m.OpenProfileFile(cfg.DeltaSharingProfile)
	}
	for _, path := range flag.Args() {
		m.Open(path)
	}
	m.ShowAndRun()
}
