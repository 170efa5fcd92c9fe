// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"
)

// namer hands out identifiers for one HLSL scope: the global scope of the
// translation unit or the members of an input or output struct.
//
// Uniqueness is case-insensitive because fxc resolves intrinsics and
// keywords without regard to case; "Color" and "color" would shadow each
// other in some contexts. Collisions get a per-base "_N" suffix, so the
// second "position" is always "position_1" whatever else was named before.
type namer struct {
	taken map[string]struct{}
	next  map[string]int
}

func newNamer() *namer {
	return &namer{
		taken: make(map[string]struct{}),
		next:  make(map[string]int),
	}
}

// call returns an unused identifier derived from base. Constant table
// names are sanitized and keywords are escaped first.
func (n *namer) call(base string) string {
	name := Escape(base)
	key := strings.ToLower(name)
	if !n.takenLower(key) {
		n.taken[key] = struct{}{}
		return name
	}
	for {
		n.next[key]++
		suffix := "_" + strconv.Itoa(n.next[key])
		if !n.takenLower(key + suffix) {
			n.taken[key+suffix] = struct{}{}
			return name + suffix
		}
	}
}

// semantic names a parameter or struct member after its semantic:
// TEXCOORD0 gives texcoord, COLOR1 gives color1.
func (n *namer) semantic(sem string) string {
	return n.call(memberName(sem))
}

func (n *namer) takenLower(key string) bool {
	_, ok := n.taken[key]
	return ok
}

// reserve marks name as taken. Register variables, loop counters and
// names supplied by a shared declaration block are spelled verbatim, so
// they are reserved before anything is named.
func (n *namer) reserve(name string) {
	n.taken[strings.ToLower(name)] = struct{}{}
}
