package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/net/http/bind"
	"ucrfood/internal/services/menus/domain"
)

// Entry is one task in its wire form, Sum is the last known digest
type Entry struct {
	URL string `json:"url"`
	Sum string `json:"sum"`
}

// Normalize accepts a single url, a list of urls or a list of {url, sum} entries
// and returns one FetchTask per element in input order
// any other shape, or any element without an absolute http url, is ErrorCodeValidation
func Normalize(v any) ([]domain.FetchTask, error) {
	switch x := v.(type) {
	case string:
		t, err := task(0, x, "")
		if err != nil {
			return nil, err
		}
		return []domain.FetchTask{t}, nil

	case []string:
		out := make([]domain.FetchTask, 0, len(x))
		for i, u := range x {
			t, err := task(i, u, "")
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, nil

	case []Entry:
		out := make([]domain.FetchTask, 0, len(x))
		for i, e := range x {
			t, err := task(i, e.URL, e.Sum)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, nil

	case []map[string]any:
		anys := make([]any, len(x))
		for i := range x {
			anys[i] = x[i]
		}
		return fromList(anys)

	case []any:
		return fromList(x)

	case json.RawMessage:
		return fromJSON(x)

	case []byte:
		return fromJSON(x)
	}
	return nil, shapeErr("tasks", v)
}

func fromJSON(raw []byte) ([]domain.FetchTask, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, perr.WithField(perr.Validationf("tasks are required"), "tasks")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "tasks are not valid json"), "tasks")
	}
	return Normalize(v)
}

// fromList accepts elements that are all urls or all {url, sum} objects
func fromList(xs []any) ([]domain.FetchTask, error) {
	out := make([]domain.FetchTask, 0, len(xs))
	for i, el := range xs {
		var (
			t   domain.FetchTask
			err error
		)
		switch e := el.(type) {
		case string:
			t, err = task(i, e, "")
		case map[string]any:
			t, err = fromMap(i, e)
		default:
			return nil, shapeErr(fmt.Sprintf("tasks[%d]", i), el)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func fromMap(i int, m map[string]any) (domain.FetchTask, error) {
	u, ok := m["url"].(string)
	if !ok {
		return domain.FetchTask{}, perr.WithField(perr.Validationf("task %d has no url", i), fmt.Sprintf("tasks[%d].url", i))
	}
	var sum string
	if raw, present := m["sum"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return domain.FetchTask{}, perr.WithField(perr.Validationf("task %d sum must be a string", i), fmt.Sprintf("tasks[%d].sum", i))
		}
		sum = s
	}
	return task(i, u, sum)
}

func task(i int, u, sum string) (domain.FetchTask, error) {
	u = strings.TrimSpace(u)
	if err := bind.Var(fmt.Sprintf("tasks[%d].url", i), u, "required,http_url"); err != nil {
		return domain.FetchTask{}, err
	}
	t, err := domain.NewFetchTask(u, sum)
	if err != nil {
		return domain.FetchTask{}, perr.WithField(err, fmt.Sprintf("tasks[%d].url", i))
	}
	return t, nil
}

func shapeErr(field string, v any) error {
	return perr.WithField(perr.Validationf("unsupported task shape %T", v), field)
}
