// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate_test

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/intel/fastzlib/compress/flate"
)

// This example compresses a short text with BestSpeed and reads it back.
func Example() {
	data := []byte(`simple text`)
	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		log.Fatal(err)
	}

	// Close flushes all data
	w.Write(data)
	w.Close()

	r := flate.NewReader(&buf)
	readData, err := io.ReadAll(r)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Data matches:", bytes.Equal(data, readData))
	// Output: Data matches: true
}
