package storage

// Unix file-type bits, as found in the mode argument FUSE's create/mkdir
// pass down and in the Mode field a getattr reply carries back.
const (
	modeIFMT   = 0xf000
	modeIFSOCK = 0xc000
	modeIFLNK  = 0xa000
	modeIFREG  = 0x8000
	modeIFBLK  = 0x6000
	modeIFDIR  = 0x4000
	modeIFCHR  = 0x2000
	modeIFIFO  = 0x1000
)

// KindToUnixType returns the S_IFMT file-type bits for kind, for callers
// building a full Unix mode word (type bits | permission bits) to hand back
// through the kernel bridge.
func KindToUnixType(kind Kind) uint32 {
	switch kind {
	case KindDirectory:
		return modeIFDIR
	case KindRegularFile:
		return modeIFREG
	case KindSymlink:
		return modeIFLNK
	case KindBlockDevice:
		return modeIFBLK
	case KindCharDevice:
		return modeIFCHR
	case KindNamedPipe:
		return modeIFIFO
	case KindSocket:
		return modeIFSOCK
	default:
		return modeIFREG
	}
}

// UnixTypeToKind is KindToUnixType's inverse: it recovers a Kind from the
// S_IFMT bits of a full Unix mode word. Bits this engine never produces
// itself (block/char devices, sockets, named pipes, symlinks) map back to
// their own Kind rather than to KindRegularFile; only unrecognised type bits
// fall back to KindRegularFile.
func UnixTypeToKind(mode uint32) Kind {
	switch mode & modeIFMT {
	case modeIFDIR:
		return KindDirectory
	case modeIFLNK:
		return KindSymlink
	case modeIFBLK:
		return KindBlockDevice
	case modeIFCHR:
		return KindCharDevice
	case modeIFIFO:
		return KindNamedPipe
	case modeIFSOCK:
		return KindSocket
	default:
		return KindRegularFile
	}
}
