package hostcall

import (
	"strconv"
	"strings"
)

// errnoNames follows the wasi_snapshot_preview1 errno enumeration order.
var errnoNames = [...]string{
	"success", "2big", "acces", "addrinuse", "addrnotavail", "afnosupport",
	"again", "already", "badf", "badmsg", "busy", "canceled", "child",
	"connaborted", "connrefused", "connreset", "deadlk", "destaddrreq", "dom",
	"dquot", "exist", "fault", "fbig", "hostunreach", "idrm", "ilseq",
	"inprogress", "intr", "inval", "io", "isconn", "isdir", "loop", "mfile",
	"mlink", "msgsize", "multihop", "nametoolong", "netdown", "netreset",
	"netunreach", "nfile", "nobufs", "nodev", "noent", "noexec", "nolck",
	"nolink", "nomem", "nomsg", "noprotoopt", "nospc", "nosys", "notconn",
	"notdir", "notempty", "notrecoverable", "notsock", "notsup", "notty",
	"nxio", "overflow", "ownerdead", "perm", "pipe", "proto", "protonosupport",
	"prototype", "range", "rofs", "spipe", "srch", "stale", "timedout",
	"txtbsy", "xdev", "notcapable",
}

// ErrnoName returns the symbolic name of a WASI errno, e.g. "EBADF".
func ErrnoName(errno int32) string {
	if errno < 0 || int(errno) >= len(errnoNames) {
		return "errno(" + strconv.Itoa(int(errno)) + ")"
	}
	return "E" + strings.ToUpper(errnoNames[errno])
}
