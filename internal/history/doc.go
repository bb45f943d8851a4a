// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records tool runs in a local SQLite database.
//
// The store lives at ~/.toolverse/history.db by default and keeps the most
// recent runs up to a configured limit. It uses the pure Go modernc.org
// driver, so no cgo toolchain is needed.
//
// # Usage
//
//	store, err := history.Open(cfg.HistoryPath(), cfg.History.Limit)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	exec := tools.NewExecutor(reg, tools.WithRecorder(store.Recorder()))
package history
