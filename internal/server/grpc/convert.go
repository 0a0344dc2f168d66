package grpc

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/flow"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/services"
)

func str(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// optStr returns nil for a missing or null field.
func optStr(req *structpb.Struct, key string) *string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

func strList(req *structpb.Struct, key string) ([]string, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, false
	}
	values := v.GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, item := range values {
		out = append(out, item.GetStringValue())
	}
	return out, true
}

func anyList(list []string) []any {
	out := make([]any, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}

func draftFromRequest(req *structpb.Struct) services.RawInput {
	in := services.RawInput{
		MainText:    str(req, "main_text"),
		ProjectID:   optStr(req, "project_id"),
		CompanyID:   optStr(req, "company_id"),
		CompanyName: optStr(req, "company_name"),
		RoleTitle:   optStr(req, "role_title"),
	}
	if answers := req.GetFields()["answers"].GetStructValue(); answers != nil {
		in.Answers = make(map[common.QuestionKey]string, len(answers.GetFields()))
		for k, v := range answers.GetFields() {
			in.Answers[common.QuestionKey(k)] = v.GetStringValue()
		}
	}
	return in
}

func editFromRequest(req *structpb.Struct) models.CurrentEdit {
	e := models.CurrentEdit{
		Name:      optStr(req, "name"),
		Paragraph: optStr(req, "paragraph"),
		Situation: optStr(req, "situation"),
		Task:      optStr(req, "task"),
		Action:    optStr(req, "action"),
		Result:    optStr(req, "result"),
	}
	if bullets, ok := strList(req, "bullets"); ok {
		e.Bullets = bullets
	}
	return e
}

func flowView(s flow.Snapshot) map[string]any {
	v := map[string]any{
		"flow_id":        s.ID,
		"state":          string(s.State),
		"entry_id":       s.EntryID,
		"achievement_id": s.AchievementID,
	}
	if s.Error != "" {
		v["error"] = s.Error
	}
	if s.Draft.MainText != "" {
		answers := map[string]any{}
		for k, text := range s.Draft.Answers {
			answers[string(k)] = text
		}
		v["draft"] = map[string]any{"main_text": s.Draft.MainText, "answers": answers}
	}
	if r := s.Result; r != nil {
		v["result"] = map[string]any{
			"name":               r.Name,
			"paragraph":          r.Paragraph,
			"bullets":            anyList(r.Bullets),
			"star_situation":     r.StarSituation,
			"star_task":          r.StarTask,
			"star_action":        r.StarAction,
			"star_result":        r.StarResult,
			"tags":               anyList(r.Tags),
			"completeness_score": r.CompletenessScore,
			"completeness_flags": anyList(r.CompletenessFlags),
		}
	}
	return v
}

func toStruct(v map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encoding response: %v", err))
	}
	return s, nil
}

// toStatus maps service errors to gRPC codes. Internal details are not
// sent to the client.
func toStatus(err error) error {
	if _, ok := err.(interface{ GRPCStatus() *status.Status }); ok {
		return err
	}
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
