// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(StoreOperationsTotal.WithLabelValues("memory", "create", ResultSuccess))
	errBefore := testutil.ToFloat64(StoreOperationsTotal.WithLabelValues("memory", "create", ResultError))

	RecordStoreOperation("memory", "create", time.Millisecond, nil)
	RecordStoreOperation("memory", "create", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(StoreOperationsTotal.WithLabelValues("memory", "create", ResultSuccess)); got != okBefore+1 {
		t.Errorf("success count = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(StoreOperationsTotal.WithLabelValues("memory", "create", ResultError)); got != errBefore+1 {
		t.Errorf("error count = %v, want %v", got, errBefore+1)
	}
}

func TestRecordSnapshot(t *testing.T) {
	before := testutil.ToFloat64(SnapshotPushesTotal)
	RecordSnapshot(7)

	if got := testutil.ToFloat64(SnapshotPushesTotal); got != before+1 {
		t.Errorf("pushes = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(CacheItems); got != 7 {
		t.Errorf("cache items = %v, want 7", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordExport_OnlyObservesRowsOnSuccess(t *testing.T) {
	before := testutil.ToFloat64(ExportsTotal.WithLabelValues("file", ResultError))
	RecordExport("file", 10, errors.New("disk full"))
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("file", ResultError)); got != before+1 {
		t.Errorf("export errors = %v, want %v", got, before+1)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("nats-kv", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nats-kv")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}
