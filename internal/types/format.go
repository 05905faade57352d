package types

import "strings"

// String renders id the way world files spell types.
func (in *Interner) String(id TypeID) string {
	var sb strings.Builder
	in.write(&sb, id)
	return sb.String()
}

func (in *Interner) write(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindAny:
		sb.WriteString("Any")
	case KindUnit:
		sb.WriteString("Unit")
	case KindClass:
		sb.WriteString(in.classes[tt.Payload].Name)
	case KindIntLiteral:
		sb.WriteString("literal(")
		in.write(sb, in.literals[tt.Payload].Default)
		sb.WriteString(")")
	case KindFn:
		info := &in.fns[tt.Payload]
		if info.Receiver.IsValid() {
			if in.KindOf(info.Receiver) == KindFn {
				sb.WriteString("(")
				in.write(sb, info.Receiver)
				sb.WriteString(")")
			} else {
				in.write(sb, info.Receiver)
			}
			sb.WriteString(".")
		}
		sb.WriteString("(")
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.write(sb, p)
		}
		sb.WriteString(") -> ")
		in.write(sb, info.Result)
	default:
		sb.WriteString(tt.Kind.String())
	}
}
