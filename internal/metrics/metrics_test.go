package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	m := New()
	if m.FilesScanned == nil {
		t.Error("expected FilesScanned to be initialized")
	}
	if m.DescriptorsWritten == nil {
		t.Error("expected DescriptorsWritten to be initialized")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.FilesScanned.Inc()
	m.RecordWrite("written")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "protodig_files_scanned_total") {
		t.Error("expected metrics output to contain protodig_files_scanned_total")
	}
	if !strings.Contains(string(body), "protodig_descriptors_written_total") {
		t.Error("expected metrics output to contain protodig_descriptors_written_total")
	}
}

func TestRecordFileSkipped(t *testing.T) {
	m := New()
	m.RecordFileSkipped("non-binary")
	m.RecordFileSkipped("too-small")
}

func TestRecordDescriptorDecode(t *testing.T) {
	m := New()
	m.RecordDescriptorDecode(true)
	m.RecordDescriptorDecode(false)
}

func TestRecordWrite(t *testing.T) {
	m := New()
	m.RecordWrite("written")
	m.RecordWrite("duplicate")
	m.RecordWrite("conflict-renamed")
}

func TestObserveScanDuration(t *testing.T) {
	m := New()
	m.ObserveScanDuration(5 * time.Millisecond)
}
