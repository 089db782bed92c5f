// Copyright 2026 Benoit Pereira da Silva
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunAnalyzeXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<doc>hello world</doc>`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runAnalyze(&buf, path, ""))
	require.Contains(t, buf.String(), `"Value": "hello"`)
	require.Contains(t, buf.String(), `"Value": "world"`)
}

func TestRunQuery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runQuery(&buf, "Hello World"))
	require.Contains(t, buf.String(), `"hello"`)
	require.Contains(t, buf.String(), `"world"`)
	require.Contains(t, buf.String(), `"union"`)
}
