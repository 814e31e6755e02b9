package dispatcher

import (
	"encoding/json"
	"net/http"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      any                `json:"id"`
	Result  any                `json:"result,omitempty"`
	Error   *mcpptype.RPCError `json:"error,omitempty"`
}

func writeResult(w http.ResponseWriter, id any, result any) {
	writeEnvelope(w, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func writeError(w http.ResponseWriter, id any, rerr *mcpptype.RPCError) {
	writeEnvelope(w, rpcResponse{JSONRPC: "2.0", ID: id, Error: rerr})
}

func writeEnvelope(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
