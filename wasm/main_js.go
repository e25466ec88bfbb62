//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/blockmesh/api"
	"github.com/voxelsplace/blockmesh/vopl"
)

func bytesArg(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func uint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// meshOptions reads an optional {naive, parallel, hide} object.
func meshOptions(args []js.Value, i int) (api.Options, error) {
	var opts api.Options
	if len(args) <= i || args[i].Type() != js.TypeObject {
		return opts, nil
	}
	o := args[i]
	if v := o.Get("naive"); v.Type() == js.TypeBoolean {
		opts.Naive = v.Bool()
	}
	if v := o.Get("parallel"); v.Type() == js.TypeBoolean {
		opts.Parallel = v.Bool()
	}
	if v := o.Get("hide"); v.Type() == js.TypeString {
		overrides, err := api.ParseHidden(v.String())
		if err != nil {
			return opts, err
		}
		opts.Overrides = overrides
	}
	return opts, nil
}

func vopl2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vopl bytes")
	}
	opts, err := meshOptions(args, 1)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, _, err := api.VOPLToGLB(bytesArg(args[0]), opts)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return uint8Array(out)
}

func vopl2quads(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vopl bytes")
	}
	opts, err := meshOptions(args, 1)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := api.VOPLToQuadsJSON(bytesArg(args[0]), opts)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(string(out))
}

func packVopls(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesArg(filesObj.Get(k))
	}

	comp := vopl.CompressionZlib
	if len(args) > 1 && args[1].Type() == js.TypeString {
		c, err := vopl.ParseCompression(args[1].String())
		if err != nil {
			return js.ValueOf(err.Error())
		}
		comp = c
	}

	out, err := api.PackVOPLs(files, vopl.LayoutCDC, comp)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return uint8Array(out)
}

func unpackVoplpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackVOPLPack(bytesArg(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, uint8Array(b))
	}
	return result
}

func main() {
	js.Global().Set("vopl2glb", js.FuncOf(vopl2glb))
	js.Global().Set("vopl2quads", js.FuncOf(vopl2quads))
	js.Global().Set("packVopls", js.FuncOf(packVopls))
	js.Global().Set("unpackVoplpack", js.FuncOf(unpackVoplpack))
	select {}
}
