package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/dotdir"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome string
		origXDG  string
		origCwd  string
		homeDir  string
		cwdDir   string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		homeDir, err = os.MkdirTemp("", "agentui-home-*")
		Expect(err).NotTo(HaveOccurred())
		cwdDir, err = os.MkdirTemp("", "agentui-cwd-*")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Chdir(cwdDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
		_ = os.RemoveAll(homeDir)
		_ = os.RemoveAll(cwdDir)
	})

	It("returns an explicit path unchanged", func() {
		path, err := ResolveSQLitePath("/tmp/custom.sqlite", "/ignored")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("places the database inside the config dir override", func() {
		path, err := ResolveSQLitePath("", "/srv/agentui")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join("/srv/agentui", DefaultFileName)))
	})

	It("resolves ~/.agentui/agentui.sqlite when present", func() {
		dbPath := filepath.Join(homeDir, dotdir.DirName, DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("prefers XDG_DATA_HOME when the file exists there", func() {
		xdg := filepath.Join(homeDir, "data")
		dbPath := filepath.Join(xdg, "agentui", DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", xdg)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("creates ~/.agentui/ when nothing exists", func() {
		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, dotdir.DirName, DefaultFileName)))

		info, err := os.Stat(filepath.Join(homeDir, dotdir.DirName))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})
})
