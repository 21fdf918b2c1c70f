package agent

// ReactHandler relays incremental output from react-mode executions.
// Every event contributes its text to the running aggregate; the upstream
// finish marker decides when the stream's terminal record is produced.
type ReactHandler struct{}

func (h *ReactHandler) Handle(req *Request, event *Response, acc *Accumulator) (*ProcessResult, error) {
	turns := acc.Record(event)
	acc.Append(event.Result)

	res := &ProcessResult{
		Status:       StatusSuccess,
		Finished:     event.Finish,
		Response:     event.Result,
		ResponseAll:  acc.All(),
		ReqID:        req.RequestID,
		ResponseType: ResponseTypeText,
		PackageType:  PackageTypeResult,
		UseTimes:     turns,
	}
	if event.Finish && len(event.ResultMap) > 0 {
		res.ResultMap = event.ResultMap
	}
	return res, nil
}
