package function

import (
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// ReservedInit is the member-store name a constructor is registered
// under (§6 "Reserved names").
const ReservedInit = "__init__"

// RegisterMethod additionally registers f on the member store of its
// first argument's type, per §4.5 "Method registration". f must already
// have kind Method or Constructor.
func RegisterMethod(f *Function, receiver *types.Spec) *status.Status {
	if len(f.args) == 0 {
		return status.New(status.CodeInvalidArgument, "a method must declare a receiver (first) argument")
	}
	return registerOnMemberStore(receiver.MemberStore(), f.name, receiver.ScopeName(), f)
}

// RegisterConstructor registers f on the member store of its result
// type under the reserved __init__ name, per §4.5 "Method registration".
func RegisterConstructor(f *Function, result *types.Spec) *status.Status {
	return registerOnMemberStore(result.MemberStore(), ReservedInit, result.ScopeName(), f)
}

func registerOnMemberStore(store *scope.BasicStore, name string, scopeName scope.ScopeName, f *Function) *status.Status {
	existing, ok := store.GetName(name)
	var group *Group
	if ok {
		group, ok = existing.(*Group)
		if !ok {
			return status.Newf(status.CodeAlreadyExists, "%s is already defined as a non-method member", name)
		}
	} else {
		group = NewGroup(name, scopeName, true)
		if st := store.AddName(name, group); st != nil {
			return st
		}
	}
	return group.Add(f)
}
