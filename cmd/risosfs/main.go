// Command risosfs mounts an in-memory filesystem at a directory, backed by a
// fixed-capacity inode/block store persisted to two sidecar files under the
// mountpoint across clean restarts.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/ufabc-bcc/risosfs/internal/fsdriver"
	"github.com/ufabc-bcc/risosfs/internal/serialization"
	"github.com/ufabc-bcc/risosfs/internal/storage"
)

const defaultMemorySize = 1 << 30 // 1 GiB, per spec §6's capacity defaults.

var (
	memorySize int
	blockSize  int
)

var rootCmd = &cobra.Command{
	Use:   "risosfs <mountpoint>",
	Short: "Mount the RisosFS in-memory filesystem",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().IntVar(&memorySize, "memory-size", defaultMemorySize, "total memory backing the data pool, in bytes")
	rootCmd.Flags().IntVar(&blockSize, "block-size", 1024*serialization.InodeSize, "size of one data block and of one superblock page, in bytes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("risosfs: exiting")
	}
}

func run(cmd *cobra.Command, args []string) error {
	mountpoint := args[0]

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	raiseFileLimit(log)

	engine, err := storage.New(storage.Config{
		RootPath:          mountpoint,
		MemorySizeInBytes: memorySize,
		BlockSize:         blockSize,
		Log:               log,
	})
	if err != nil {
		return err
	}

	root := fsdriver.NewRoot(engine, log)
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Options:        []string{"nonempty"},
			SingleThreaded: true,
		},
		DefaultPermissions: true,
	})
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("risosfs: signal received, unmounting")
		if err := server.Unmount(); err != nil {
			log.WithError(err).Error("risosfs: unmount failed")
		}
	}()

	log.WithField("mountpoint", mountpoint).Info("risosfs: mounted")
	server.Wait()

	engine.WriteToDisk()
	log.Info("risosfs: snapshot written, exiting")
	return nil
}

// raiseFileLimit raises RLIMIT_NOFILE towards its hard ceiling before the
// FUSE server starts handling requests, since the kernel bridge holds a file
// descriptor open per mount and per in-flight request.
func raiseFileLimit(log logrus.FieldLogger) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		log.WithError(err).Warn("risosfs: failed to query RLIMIT_NOFILE")
		return
	}
	if rlimit.Cur >= rlimit.Max {
		return
	}
	rlimit.Cur = rlimit.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		log.WithError(err).Warn("risosfs: failed to raise RLIMIT_NOFILE")
	}
}
