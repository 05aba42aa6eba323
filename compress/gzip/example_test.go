// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package gzip_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/intel/fastzlib/compress/gzip"
)

func Example() {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Name = "notes.txt"
	w.ModTime = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if _, err := w.Write([]byte("gzip members carry a name")); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}

	r, err := gzip.NewReader(&buf)
	if err != nil {
		log.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(r.Name, r.ModTime.UTC().Format(time.DateOnly))
	fmt.Println(string(data))
	// Output:
	// notes.txt 2024-03-01
	// gzip members carry a name
}
