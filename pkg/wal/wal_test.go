package wal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Seq  int    `json:"seq"`
	Note string `json:"note"`
}

// TestAppendReadAll 寫入多筆後應能依序讀回
func TestAppendReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 1; i <= 3; i++ {
		if err := w.Append(record{Seq: i, Note: "r"}); err != nil {
			t.Fatal(err)
		}
	}

	var got []record
	err = w.ReadAll(func(jsonRaw []byte) error {
		var r record
		if err := json.Unmarshal(jsonRaw, &r); err != nil {
			return err
		}
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d records, want 3", len(got))
	}
	for i, r := range got {
		if r.Seq != i+1 {
			t.Fatalf("record %d out of order: %+v", i, r)
		}
	}
}

// TestAppendAfterReadAll ReadAll 動過讀取位置後，O_APPEND 仍保證寫到檔尾
func TestAppendAfterReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Append(record{Seq: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.ReadAll(func([]byte) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(record{Seq: 2}); err != nil {
		t.Fatal(err)
	}

	count := 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("read %d records, want 2", count)
	}
}

// TestReset 清空後檔案歸零，舊資料不可再讀到
func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Append(record{Seq: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Reset(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("size=%d want=0 after reset", info.Size())
	}

	count := 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("read %d records after reset, want 0", count)
	}

	// Reset 之後還能繼續寫
	if err := w.Append(record{Seq: 2}); err != nil {
		t.Fatal(err)
	}
	count = 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("read %d records, want 1", count)
	}
}
