package agent

// PlannerHandler interprets plan-and-solve executions. Plan and task
// events stream through as progress records; the terminal record carries
// the aggregate of everything produced along the way.
type PlannerHandler struct{}

func (h *PlannerHandler) Handle(req *Request, event *Response, acc *Accumulator) (*ProcessResult, error) {
	turns := acc.Record(event)
	if event.MessageType == "task" {
		acc.Tasks++
	}
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
	if event.Finish {
		if len(event.ResultMap) > 0 {
			res.ResultMap = event.ResultMap
		} else if acc.Tasks > 0 {
			res.ResultMap = map[string]any{"taskCount": acc.Tasks}
		}
	}
	return res, nil
}
