package agent

// RouterHandler serves routing decisions. Routing is effectively
// single-shot: the upstream answers with one final event, so the first
// finish marker yields the terminal record.
type RouterHandler struct{}

func (h *RouterHandler) Handle(req *Request, event *Response, acc *Accumulator) (*ProcessResult, error) {
	turns := acc.Record(event)
	acc.Append(event.Result)

	return &ProcessResult{
		Status:       StatusSuccess,
		Finished:     event.Finish || event.IsFinal,
		Response:     event.Result,
		ResponseAll:  acc.All(),
		ReqID:        req.RequestID,
		ResponseType: ResponseTypeText,
		PackageType:  PackageTypeResult,
		UseTimes:     turns,
		ResultMap:    event.ResultMap,
	}, nil
}
