package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRespondsNotImplementedPerFrame(t *testing.T) {
	req := `{"id":1,"method":"textDocument/hover","params":{}}`
	in := bytes.NewBufferString(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(req), req))
	var out bytes.Buffer

	require.NoError(t, serve(in, &out))

	var resp rpcResponse
	body := out.String()
	idx := bytes.Index(out.Bytes(), []byte("\r\n\r\n"))
	require.Greater(t, idx, -1)
	require.NoError(t, json.Unmarshal([]byte(body[idx+4:]), &resp))
	assert.Contains(t, resp.Error, "hover")
}

func TestParsePositionLineCol(t *testing.T) {
	text := []byte("<?php\n$x = 1;\n$x;\n")
	offset, err := parsePosition(text, "3:1")
	require.NoError(t, err)
	assert.Equal(t, byte('$'), text[offset])
}

func TestParsePositionRejectsMalformedSpec(t *testing.T) {
	_, err := parsePosition([]byte("<?php\n"), "not-a-position")
	assert.Error(t, err)
}

func TestParsePositionRejectsOutOfRangeLine(t *testing.T) {
	_, err := parsePosition([]byte("<?php\n"), "99:1")
	assert.Error(t, err)
}
