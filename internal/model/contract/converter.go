package contract

// Converter is the capability pair each vendor variant implements: build the
// vendor request from a canonical one, and turn the vendor reply back into a
// canonical response. Req and Resp are the variant's own concrete types.
type Converter[Req, Resp any] interface {
	ConvertRequest(req CompletionRequest) (Req, error)
	ConvertResponse(resp Resp) (*CompletionResponse, error)
}
