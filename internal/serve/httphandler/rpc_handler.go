package httphandler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stellar/go/support/render/httpjson"

	"github.com/stellar/anchor-platform-backend/internal/rpc"
)

const jsonRPCVersion = "2.0"

// RPCHandler is the single JSON-RPC endpoint. It accepts one request object
// or a batch array and always answers 200 with per-request result or error
// objects; batch answers are positional.
type RPCHandler struct {
	Dispatcher *rpc.Dispatcher
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      any        `json:"id"`
	Result  any        `json:"result,omitempty"`
	Error   *rpc.Error `json:"error,omitempty"`
}

func (h RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpjson.RenderStatus(w, http.StatusBadRequest, errorResponse(nil, rpc.InvalidRequest("cannot read request body")), httpjson.JSON)
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []rpcRequest
		if err = json.Unmarshal(body, &reqs); err != nil {
			httpjson.RenderStatus(w, http.StatusBadRequest, errorResponse(nil, rpc.InvalidRequest("invalid JSON-RPC batch")), httpjson.JSON)
			return
		}

		responses := make([]rpcResponse, 0, len(reqs))
		for _, req := range reqs {
			responses = append(responses, h.dispatch(r, req))
		}
		httpjson.Render(w, responses, httpjson.JSON)
		return
	}

	var req rpcRequest
	if err = json.Unmarshal(body, &req); err != nil {
		httpjson.RenderStatus(w, http.StatusBadRequest, errorResponse(nil, rpc.InvalidRequest("invalid JSON-RPC request")), httpjson.JSON)
		return
	}
	httpjson.Render(w, h.dispatch(r, req), httpjson.JSON)
}

func (h RPCHandler) dispatch(r *http.Request, req rpcRequest) rpcResponse {
	if req.JSONRPC != jsonRPCVersion {
		return errorResponse(req.ID, rpc.InvalidRequest("Unsupported JSON-RPC protocol version"))
	}

	result, rpcErr := h.Dispatcher.Handle(r.Context(), req.Method, req.Params)
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	return rpcResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result}
}

func errorResponse(id any, rpcErr *rpc.Error) rpcResponse {
	return rpcResponse{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr}
}
