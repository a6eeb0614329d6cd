package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// rpcRequest/rpcResponse are the minimal stdio JSON-RPC framing this
// command speaks: Content-Length-prefixed JSON bodies, no protocol-method
// fan-out. Real provider wiring (LSP methods, capability negotiation) is
// out of scope here.
type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stdio JSON-RPC framing loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// serve reads Content-Length-framed JSON-RPC requests from r and writes
// framed responses to w until r is exhausted. Every request is
// acknowledged with a "not implemented" error: the framing is the
// deliverable here, not a method dispatch table.
func serve(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		req, err := readFrame(reader)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		resp := rpcResponse{ID: req.ID, Error: fmt.Sprintf("method %q not implemented", req.Method)}
		if err := writeFrame(w, resp); err != nil {
			return err
		}
	}
}

func readFrame(r *bufio.Reader) (rpcRequest, error) {
	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return rpcRequest{}, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		fmt.Sscanf(line, "Content-Length: %d", &length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return rpcRequest{}, err
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return rpcRequest{}, err
	}
	return req, nil
}

func writeFrame(w io.Writer, resp rpcResponse) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	return err
}
