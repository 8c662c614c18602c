// Package bind implements Component D: the argument binder. It takes the
// raw positional arguments off a Request and the ProcedureSignature the
// registry looked up, and produces the fully bound []any argument slice
// an Invoker expects — decoding each supplied position, substituting
// declared defaults for omitted optional positions, and failing with
// MissingArgument for an omitted required one. There is no teacher
// analogue for binding by declared position; this is built directly from
// spec.md §4.D.
package bind

import (
	"strconv"

	"github.com/jeeves-cluster-organization/missionrpc/registry"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// RawArgument is one wire-encoded argument as it arrived on a Request,
// keyed by its declared position so arguments may arrive out of order
// (spec.md §8's "optional out-of-order args" scenario) or be omitted
// entirely when optional.
type RawArgument struct {
	Position int
	Value    []byte
}

// Bind decodes raw according to sig.Parameters and returns the bound
// argument slice, in declared position order, ready to pass to
// sig.Invoke.
func Bind(sig *registry.ProcedureSignature, raw []RawArgument, resolver wire.HandleResolver) ([]any, error) {
	byPosition := make(map[int][]byte, len(raw))
	for _, a := range raw {
		byPosition[a.Position] = a.Value
	}

	args := make([]any, len(sig.Parameters))
	for i, param := range sig.Parameters {
		b, supplied := byPosition[i]
		if !supplied {
			if !param.Optional {
				name := param.Name
				if name == "" {
					name = positionName(i)
				}
				return nil, rpcerr.New(rpcerr.MissingArgument, "%s", name)
			}
			args[i] = param.Default
			continue
		}

		v, err := wire.DecodeValue(param.Type, b, resolver)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func positionName(i int) string {
	return "argument at position " + strconv.Itoa(i)
}
