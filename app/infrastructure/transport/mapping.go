package transport

import "github.com/okorolev/gh-activity-report/app/usecase"

type LoadRequest struct {
	Period string `json:"period"`
}

type LoadResponse struct {
	RunID    string `json:"run_id"`
	Inserted int64  `json:"inserted"`
}

type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error HTTPError `json:"error"`
}

func toLoadResponse(res *usecase.LoadResult) LoadResponse {
	return LoadResponse{RunID: res.RunID, Inserted: res.Inserted}
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: HTTPError{Code: code, Message: message}}
}
