package dynamic

import (
	"bytes"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

// FromJSON parses a JSON object into a record of the message desc.
// Values are converted to the types a decoded record would hold, so a
// record parsed from JSON encodes exactly like one read from the wire.
// Bytes fields are base64 strings; enums may be given by name or number;
// 64-bit integers may be quoted.
func FromJSON(data []byte, desc *wire.MessageDescriptor) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.ParseFailed("record JSON", err)
	}
	if raw == nil {
		return nil, errors.InvalidInput(errors.PhaseParse, "record JSON must be an object")
	}
	return fromObject(raw, desc, []string{desc.Name})
}

// ToJSON renders a record, indented when indent is set.
func ToJSON(r *Record, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

func fromObject(raw map[string]any, desc *wire.MessageDescriptor, path []string) (*Record, error) {
	var unknown []string
	for k := range raw {
		if desc.FieldByName(k) == nil {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.FieldUnknown(errors.PhaseParse, path, unknown[0])
	}

	rec := NewRecord()
	oneofs := make(map[string]string)
	for i := range desc.Fields {
		fd := &desc.Fields[i]
		v, ok := raw[fd.Name]
		if !ok || v == nil {
			continue
		}
		fpath := append(append([]string(nil), path...), fd.Name)

		if fd.Oneof != "" {
			if prev, ok := oneofs[fd.Oneof]; ok {
				return nil, errors.SchemaMismatch(errors.PhaseParse, fpath,
					"oneof %q already set by %q", fd.Oneof, prev)
			}
			oneofs[fd.Oneof] = fd.Name
		}

		if !fd.Repeated {
			val, err := fromValue(fd, v, fpath)
			if err != nil {
				return nil, err
			}
			rec.Set(fd.Name, val)
			continue
		}

		list, ok := v.([]any)
		if !ok {
			return nil, mismatch(errors.PhaseParse, fpath, v, fd.Kind)
		}
		items := make([]any, 0, len(list))
		for j, item := range list {
			val, err := fromValue(fd, item, append(fpath[:len(fpath):len(fpath)], fmt.Sprintf("[%d]", j)))
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		rec.Set(fd.Name, items)
	}
	return rec, nil
}

func fromValue(fd *wire.FieldDescriptor, v any, path []string) (any, error) {
	switch fd.Kind {
	case wire.KindInt32, wire.KindSInt32, wire.KindSFixed32:
		n, err := asInt(v, 32)
		return int32(n), atPath(err, path)
	case wire.KindUInt32, wire.KindFixed32:
		n, err := asUint(v, 32)
		return uint32(n), atPath(err, path)
	case wire.KindInt64, wire.KindSInt64, wire.KindSFixed64:
		n, err := asInt(v, 64)
		return n, atPath(err, path)
	case wire.KindUInt64, wire.KindFixed64:
		n, err := asUint(v, 64)
		return n, atPath(err, path)
	case wire.KindFloat:
		f, err := asFloat(v)
		return float32(f), atPath(err, path)
	case wire.KindDouble:
		f, err := asFloat(v)
		return f, atPath(err, path)
	case wire.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case wire.KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case wire.KindBytes:
		if s, ok := v.(string); ok {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
					Path(path...).
					Detail("bytes must be base64").
					Cause(err).
					Build()
			}
			return b, nil
		}
	case wire.KindEnum:
		if name, ok := v.(string); ok {
			if fd.Enum == nil {
				break
			}
			if _, ok := fd.Enum.ValueNumber(name); !ok {
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidEnum).
					Path(path...).
					Value(name).
					Detail("unknown value of enum %s", fd.Enum.Name).
					Build()
			}
			return name, nil
		}
		n, err := asInt(v, 32)
		if err != nil {
			return nil, atPath(err, path)
		}
		return enumValue(fd, int32(n)), nil
	case wire.KindMessage:
		if obj, ok := v.(map[string]any); ok {
			return fromObject(obj, fd.Message, path)
		}
	}
	return nil, mismatch(errors.PhaseParse, path, v, fd.Kind)
}

// atPath moves a conversion error into the parse phase at path.
func atPath(err error, path []string) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		out := *e
		out.Phase = errors.PhaseParse
		out.Path = path
		return &out
	}
	return errors.New(errors.PhaseParse, errors.KindTypeMismatch).
		Path(path...).
		Cause(err).
		Build()
}
