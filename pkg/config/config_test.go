package config_test

import (
	"errors"
	"path/filepath"

	"github.com/go-test/deep"
	"github.com/mandelsoft/goutils/generics"
	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	me "github.com/mandelsoft/userdev/pkg/config"
	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/flavor"
	"github.com/mandelsoft/userdev/pkg/stages"
)

const CONFIG = `
flavor: fml
apiVersion: 1.6.4-6.4.49.965
projectDir: ${HOME}/mod
cacheDir: ${CACHE:-/tmp/cache}
workers: 2
repositories:
  - /repo/local
remapper: [ "java", "-jar", "remap.jar", "{in}", "{out}", "{transformers}" ]
`

func env(values map[string]string) func(string) string {
	return func(n string) string { return values[n] }
}

var _ = Describe("config", func() {
	Context("parsing", func() {
		It("substitutes environment variables", func() {
			cfg := Must(me.Parse([]byte(CONFIG), env(map[string]string{"HOME": "/home/dev"})))
			Expect(*cfg.Flavor).To(Equal(flavor.FML))
			Expect(*cfg.ProjectDir).To(Equal("/home/dev/mod"))
			Expect(*cfg.CacheDir).To(Equal("/tmp/cache"))
			Expect(*cfg.Workers).To(Equal(2))
			Expect(cfg.Repositories).To(Equal([]string{"/repo/local"}))
			Expect(cfg.Remapper).To(HaveLen(6))
			Expect(cfg.McVersion).To(BeNil())
		})

		It("rejects unknown fields", func() {
			_, err := me.Parse([]byte("flavour: forge\n"), env(nil))
			Expect(err).To(HaveOccurred())
		})

		It("reads files", func() {
			fs := memoryfs.New()
			MustBeSuccessful(vfs.WriteFile(fs, "/userdev.yaml", []byte(CONFIG), 0o644))
			cfg := Must(me.Read(fs, "/userdev.yaml", env(map[string]string{"HOME": "/h", "CACHE": "/c"})))
			Expect(*cfg.CacheDir).To(Equal("/c"))

			cfg, err := me.Read(fs, "/missing.yaml", nil)
			Expect(err).To(Succeed())
			Expect(cfg).To(BeNil())
		})
	})

	Context("environment", func() {
		It("reads USERDEV variables", func() {
			cfg := Must(me.FromEnv(env(map[string]string{
				"USERDEV_FLAVOR":       "forge",
				"USERDEV_MC_VERSION":   "1.6.4",
				"USERDEV_WORKERS":      "8",
				"USERDEV_REPOSITORIES": "/a" + string(filepath.ListSeparator) + "/b",
			})))
			Expect(*cfg.Flavor).To(Equal("forge"))
			Expect(*cfg.McVersion).To(Equal("1.6.4"))
			Expect(*cfg.Workers).To(Equal(8))
			Expect(cfg.Repositories).To(Equal([]string{"/a", "/b"}))
			Expect(cfg.ApiVersion).To(BeNil())
		})

		It("rejects invalid numbers", func() {
			_, err := me.FromEnv(env(map[string]string{"USERDEV_WORKERS": "many"}))
			Expect(err).To(MatchError(ContainSubstring("USERDEV_WORKERS")))
		})
	})

	It("merges configs", func() {
		cfg := Must(me.Parse([]byte(CONFIG), env(nil)))
		me.Merge(cfg, &me.Config{Flavor: generics.Pointer("forge"), Workers: generics.Pointer(1)})
		me.Merge(cfg, nil)
		Expect(*cfg.Flavor).To(Equal("forge"))
		Expect(*cfg.Workers).To(Equal(1))
		Expect(*cfg.ApiVersion).To(Equal("1.6.4-6.4.49.965"))
	})

	Context("completion", func() {
		It("provides defaults", func() {
			cfg := &me.Config{
				ApiVersion: generics.Pointer("1.6.4-9.11.1.964"),
				ProjectDir: generics.Pointer("/project"),
				OS:         generics.Pointer("linux"),
			}
			MustBeSuccessful(cfg.Complete())
			Expect(*cfg.Flavor).To(Equal(flavor.FORGE))
			Expect(*cfg.Workers).To(Equal(me.DEFAULT_WORKERS))

			diff := deep.Equal(cfg.Context(), delayed.Context{
				ProjectDir: "/project",
				BuildDir:   "/project/build",
				CacheDir:   "/project/.userdev/caches",
				ApiVersion: "1.6.4-9.11.1.964",
				OS:         "linux",
				Extra:      map[string]string{"MIRROR": me.DEFAULT_MIRROR},
			})
			Expect(diff).To(BeEmpty())
			Expect(cfg.Repositories).To(Equal([]string{"/project/.userdev/caches/repository"}))
		})

		It("requires an api version", func() {
			Expect((&me.Config{}).Complete()).To(MatchError("apiVersion required"))
		})

		It("validates the minecraft version", func() {
			cfg := &me.Config{ApiVersion: generics.Pointer("x"), McVersion: generics.Pointer("one.six")}
			Expect(cfg.Complete()).To(MatchError(ContainSubstring(`invalid mcVersion "one.six"`)))
		})

		It("rejects unknown flavors", func() {
			cfg := &me.Config{ApiVersion: generics.Pointer("x"), Flavor: generics.Pointer("liteloader")}
			err := cfg.Complete()
			var unknown *flavor.UnknownFlavorError
			Expect(errors.As(err, &unknown)).To(BeTrue())
		})
	})

	It("configures external tools", func() {
		cfg := Must(me.Parse([]byte(CONFIG), env(map[string]string{"HOME": "/h"})))
		s := cfg.Services()
		Expect(s.Patcher).To(BeNil())
		Expect(s.Remapper).To(Equal(&stages.Command{Args: cfg.Remapper, Dir: "/h/mod"}))
	})
})
