//go:build cgo

package main

/*
#include "fmbridge.h"
*/
import "C"

import (
	"unsafe"

	"fmbridge/internal/bridge"
)

// promptBytes copies a C prompt. NULL maps to nil so the bridge can reject it.
func promptBytes(p *C.char) []byte {
	if p == nil {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(C.strlen(p)))
}

// cCallbacks adapts C function pointers. Strings passed to C are
// NUL-terminated UTF-8 copies that are only valid for the duration of the
// callback.
func cCallbacks(onChunk C.fm_chunk_cb, onDone C.fm_done_cb, onError C.fm_error_cb) bridge.Callbacks {
	var cb bridge.Callbacks
	if onChunk != nil {
		cb.OnChunk = func(s string, ud bridge.UserData) {
			cs := C.CString(cText(s))
			defer C.free(unsafe.Pointer(cs))
			C.fm_call_chunk(onChunk, cs, ud)
		}
	}
	if onDone != nil {
		cb.OnDone = func(ud bridge.UserData) { C.fm_call_done(onDone, ud) }
	}
	if onError != nil {
		cb.OnError = func(msg string, ud bridge.UserData) {
			cs := C.CString(cText(msg))
			defer C.free(unsafe.Pointer(cs))
			C.fm_call_error(onError, cs, ud)
		}
	}
	return cb
}

//export fm_check_availability
func fm_check_availability() C.bool {
	return C.bool(instance().CheckAvailability())
}

//export fm_response
func fm_response(prompt *C.char, userData unsafe.Pointer, onChunk C.fm_chunk_cb, onDone C.fm_done_cb, onError C.fm_error_cb) {
	instance().Respond(promptBytes(prompt), userData, cCallbacks(onChunk, onDone, onError))
}

//export fm_start_stream
func fm_start_stream(prompt *C.char, userData unsafe.Pointer, onChunk C.fm_chunk_cb, onDone C.fm_done_cb, onError C.fm_error_cb) {
	instance().StartStream(promptBytes(prompt), userData, cCallbacks(onChunk, onDone, onError))
}

//export fm_stop_stream
func fm_stop_stream() {
	instance().StopStream()
}
