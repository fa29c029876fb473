// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres provides the PostgreSQL adapter of the repo layer
// interfaces using the GORM framework. The Pool, Conn, and Tx types
// realize the repo.Pool, repo.Conn, and repo.Tx interfaces, so the
// use cases layer can acquire connections and run transactions
// without depending on GORM itself. Repository packages (such as
// menurp) type-assert the concrete types back and use GORM freely,
// since adapters may depend on frameworks.
package postgres
