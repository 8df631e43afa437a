package converter

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/stream"
	"github.com/wippyai/pbconv/wire"
)

// Encode writes local to w as the message described by m.
func Encode[L, P any](w *stream.Writer, m Message[L, P], local *L) error {
	if local == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, fmt.Sprintf("%T", local))
	}
	shadow := m.encoderInit(local)
	if err := wire.EncodeMessage(w, &shadow, m.Descriptor); err != nil {
		logFailure(errors.PhaseEncode, m.Descriptor, err)
		return err
	}
	return nil
}

// Decode reads one message from r into local. On failure local may be
// partially populated and should be discarded.
func Decode[L, P any](r *stream.Reader, m Message[L, P], local *L) error {
	if local == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, fmt.Sprintf("%T", local))
	}
	shadow := m.decoderInit(local)
	if err := wire.DecodeMessage(r, &shadow, m.Descriptor); err != nil {
		logFailure(errors.PhaseDecode, m.Descriptor, err)
		return err
	}
	if err := m.apply(&shadow, local); err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			return err
		}
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(m.Descriptor.Name).
			Detail("apply failed").
			Cause(err).
			Build()
	}
	return nil
}

func logFailure(phase errors.Phase, desc *wire.MessageDescriptor, err error) {
	name := ""
	if desc != nil {
		name = desc.Name
	}
	Logger().Debug("conversion failed",
		zap.String("phase", string(phase)),
		zap.String("message", name),
		zap.Error(err))
}
