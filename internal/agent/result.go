package agent

// NewHeartbeatResult builds the synthetic keep-alive record relayed for
// heartbeat lines. It never reaches a handler and never advances the
// accumulator.
func NewHeartbeatResult(requestID string) *ProcessResult {
	return &ProcessResult{
		Status:       StatusSuccess,
		Finished:     false,
		Response:     "",
		ResponseAll:  "",
		ReqID:        requestID,
		ResponseType: ResponseTypeText,
		PackageType:  PackageTypeHeartbeat,
	}
}

// NewLoadingResult builds the acknowledgment returned to the client while
// the streaming task runs in the background.
func NewLoadingResult(req *Request) *ProcessResult {
	return &ProcessResult{
		Status:       StatusLoading,
		Finished:     false,
		ReqID:        req.RequestID,
		ResponseType: ResponseTypeText,
		PackageType:  PackageTypeResult,
	}
}

// NewErrorResult builds a terminal error record. Router requests report
// the message in the response body with a success status, everything else
// fails explicitly; the UI renders the two shapes differently.
func NewErrorResult(req *Request, errMsg string) *ProcessResult {
	if req.AgentType == TypeRouter {
		return &ProcessResult{
			Status:       StatusSuccess,
			Finished:     true,
			Response:     errMsg,
			ResponseAll:  errMsg,
			ReqID:        req.RequestID,
			ResponseType: ResponseTypeText,
			PackageType:  PackageTypeResult,
		}
	}
	return &ProcessResult{
		Status:       StatusFailed,
		Finished:     true,
		ErrorMsg:     errMsg,
		ReqID:        req.RequestID,
		ResponseType: ResponseTypeText,
		PackageType:  PackageTypeResult,
		ResultMap:    map[string]any{},
	}
}
