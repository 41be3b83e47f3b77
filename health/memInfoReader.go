// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"github.com/c9s/goprocinfo/linux"
)

const DefaultMemoryReaderLocation = "/proc/meminfo"

// MemInfoReader reads linux memory information
type MemInfoReader struct {
	Location string
}

// Read parses the configured Location as a linux meminfo file.  A nil reader uses the default location.
func (reader *MemInfoReader) Read() (*linux.MemInfo, error) {
	location := DefaultMemoryReaderLocation
	if reader != nil && len(reader.Location) > 0 {
		location = reader.Location
	}

	return linux.ReadMemInfo(location)
}
