package responses

import "kampalabites/internal/structs"

var (
	Success     = structs.Response{Status: "ok"}
	BadRequest  = structs.Response{Status: "error", Message: "bad request"}
	NotFound    = structs.Response{Status: "error", Message: "not found"}
	InternalErr = structs.Response{Status: "error", Message: "internal server error"}
)
