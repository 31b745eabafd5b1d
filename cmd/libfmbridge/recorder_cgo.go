//go:build cgo

package main

/*
#include "fmbridge.h"

typedef struct {
	char text[4096];
	char error[512];
	int chunks;
	int dones;
	int errors;
	void *last_ud;
} fm_recorder;

static void fm_rec_chunk(const char *s, void *ud) {
	fm_recorder *r = ud;
	strncat(r->text, s, sizeof(r->text) - strlen(r->text) - 1);
	r->chunks++;
	r->last_ud = ud;
}

static void fm_rec_done(void *ud) {
	fm_recorder *r = ud;
	r->dones++;
	r->last_ud = ud;
}

static void fm_rec_error(const char *s, void *ud) {
	fm_recorder *r = ud;
	strncpy(r->error, s, sizeof(r->error) - 1);
	r->errors++;
	r->last_ud = ud;
}

static fm_chunk_cb fm_rec_chunk_cb(void) { return fm_rec_chunk; }
static fm_done_cb fm_rec_done_cb(void) { return fm_rec_done; }
static fm_error_cb fm_rec_error_cb(void) { return fm_rec_error; }
*/
import "C"

import "unsafe"

// exportFunc is the shape shared by fm_response and fm_start_stream.
type exportFunc func(*C.char, unsafe.Pointer, C.fm_chunk_cb, C.fm_done_cb, C.fm_error_cb)

// cRecorder is a C-side callback sink. It lives in C memory so the pointer
// can travel through the library as user data like a real host's would.
type cRecorder struct{ p *C.fm_recorder }

func newCRecorder() *cRecorder {
	return &cRecorder{p: (*C.fm_recorder)(C.calloc(1, C.sizeof_fm_recorder))}
}

func (r *cRecorder) free() { C.free(unsafe.Pointer(r.p)) }

func (r *cRecorder) userData() unsafe.Pointer { return unsafe.Pointer(r.p) }

// call invokes fn with the recorder's callbacks. A nil prompt is passed as NULL.
func (r *cRecorder) call(fn exportFunc, prompt *string) {
	r.invoke(fn, prompt, C.fm_rec_chunk_cb(), C.fm_rec_done_cb(), C.fm_rec_error_cb())
}

// callBare invokes fn with NULL callbacks.
func (r *cRecorder) callBare(fn exportFunc, prompt *string) {
	r.invoke(fn, prompt, nil, nil, nil)
}

func (r *cRecorder) invoke(fn exportFunc, prompt *string, chunk C.fm_chunk_cb, done C.fm_done_cb, fail C.fm_error_cb) {
	var cs *C.char
	if prompt != nil {
		cs = C.CString(*prompt)
		defer C.free(unsafe.Pointer(cs))
	}
	fn(cs, r.userData(), chunk, done, fail)
}

func (r *cRecorder) text() string  { return C.GoString(&r.p.text[0]) }
func (r *cRecorder) errorText() string { return C.GoString(&r.p.error[0]) }

func (r *cRecorder) counts() (chunks, dones, errors int) {
	return int(r.p.chunks), int(r.p.dones), int(r.p.errors)
}

func (r *cRecorder) lastUserData() unsafe.Pointer { return r.p.last_ud }
