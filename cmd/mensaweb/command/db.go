// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For a fresh installation, the init sub-command creates the meals and
canteens_scraped tables with their indices. The statements only create
missing objects, so running init against an existing installation is
harmless.`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
