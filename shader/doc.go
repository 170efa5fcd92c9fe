// Package shader models decoded Direct3D 9 shader programs.
//
// A Program is the output of a bytecode reader: the program stage and
// version, the ordered instruction stream and the optional constant table.
// Decoding raw bytecode is out of scope; programs are exchanged as YAML
// fixtures or MessagePack dumps through Decode and Encode.
//
// Registers, swizzles, write masks and modifiers have assembly-style text
// forms so fixtures stay readable:
//
//	type: pixel
//	major: 2
//	minor: 0
//	instructions:
//	  - op: dcl
//	    dest: {reg: t0, mask: xy}
//	  - op: dcl
//	    dest: {reg: s0}
//	    decl: {texture: 2d}
//	  - op: texld
//	    dest: {reg: r0}
//	    src: [{reg: t0}, {reg: s0}]
//	  - op: mov
//	    dest: {reg: oC0}
//	    src: [{reg: r0}]
package shader
