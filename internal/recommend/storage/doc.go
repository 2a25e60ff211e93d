// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package storage persists trained model snapshots in BadgerDB.
//
// A snapshot is any gob-encodable value (in practice an SVD factor dump).
// It is stored under a name and a key built from the dataset fingerprint and
// a hash of the training configuration, so a restarted server can skip
// retraining when neither the data nor the hyper-parameters changed:
//
//	key := storage.SnapshotKey(dataset.Fingerprint, cfgHash)
//	meta, err := store.Load(ctx, "svd", key, &snap)
//	if errors.Is(err, storage.ErrModelNotFound) {
//	    // train and Save
//	}
//
// # Storage Format
//
//	model:{name}:{key}   gob(storedModel{Metadata, gzip(gob(data))})
//	version:{name}       latest version counter
//
// Payloads carry a SHA-256 checksum of the uncompressed gob bytes which is
// verified on Load.
package storage
