package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// maxRequestBody bounds the size of one JSON-RPC request
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	services *rpc_types.ServiceContainer
	admin    map[string]bool
	logger   *slog.Logger
}

// Options configures a Server
type Options struct {
	// Admin lists the client IPs granted RoleAdmin
	Admin []string

	// Version is reported by server_info
	Version string

	Logger *slog.Logger
}

// NewServer creates a new RPC server backed by services
func NewServer(services *rpc_types.ServiceContainer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		services: services,
		admin:    make(map[string]bool, len(opts.Admin)),
		logger:   logger.With("component", "rpc"),
	}
	for _, ip := range opts.Admin {
		server.admin[ip] = true
	}

	server.registerAllMethods(opts.Version)

	return server
}

// Request represents a JSON-RPC request
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Handler returns the full HTTP surface: JSON-RPC on /, the notification
// stream on /ws when hub is not nil, and /health
func (s *Server) Handler(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	if hub != nil {
		mux.Handle("/ws", hub)
	}
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":               "ok",
		"service":              "swapd",
		"ledger_current_index": s.services.Ledger.CurrentTick(),
	})
}

// newContext builds the per-request context
func (s *Server) newContext(r *http.Request) *rpc_types.RpcContext {
	ctx := &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   getClientIP(r),
	}
	if s.admin[ctx.ClientIP] {
		ctx.Role = rpc_types.RoleAdmin
	}
	return ctx
}

// handleGetRequest processes GET requests with query parameters
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}

	result, rpcErr := s.executeMethod(method, nil, s.newContext(r))
	s.writeResponse(w, map[string]interface{}{"command": method}, result, rpcErr)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, nil, rpc_types.RpcErrorInternal("Failed to read request body"))
		return
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, nil, rpc_types.NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}

	if request.Method == "" {
		s.writeError(w, nil, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing method field"))
		return
	}

	// params is an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := s.newContext(r)
	if params != nil {
		var versioned struct {
			ApiVersion *int `json:"api_version"`
		}
		if err := json.Unmarshal(params, &versioned); err == nil && versioned.ApiVersion != nil {
			ctx.ApiVersion = *versioned.ApiVersion
		}
	}

	result, rpcErr := s.executeMethod(request.Method, params, ctx)

	// Echo the request on errors
	var requestObj interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		reqMap["command"] = request.Method
		requestObj = reqMap
	}

	s.writeResponse(w, requestObj, result, rpcErr)
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.RpcErrorUntrusted(method)
	}

	supported := false
	for _, version := range handler.SupportedApiVersions() {
		if ctx.ApiVersion == version {
			supported = true
			break
		}
	}
	if !supported {
		return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
	}

	result, rpcErr := handler.Handle(ctx, params)
	if rpcErr != nil {
		s.logger.Debug("rpc error", "method", method, "client", ctx.ClientIP, "error", rpcErr.ErrorString)
	}
	return result, rpcErr
}

// writeResponse writes a JSON-RPC response.
// result.status is "success" or "error"
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	if rpcErr != nil {
		s.writeError(w, request, rpcErr)
		return
	}

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		resultMap = map[string]interface{}{"data": result}
	}
	resultMap["status"] = "success"
	s.writeJSON(w, map[string]interface{}{"result": resultMap})
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, request interface{}, rpcErr *rpc_types.RpcError) {
	resultObj := map[string]interface{}{
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if request != nil {
		resultObj["request"] = request
	}
	s.writeJSON(w, map[string]interface{}{"result": resultObj})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// getClientIP extracts the peer IP. Forwarding headers are ignored since
// the IP decides the admin role.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
