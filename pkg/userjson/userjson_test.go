package userjson_test

import (
	"errors"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-test/deep"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/configurations"
	me "github.com/mandelsoft/userdev/pkg/userjson"
)

const DEV_JSON = `
{
  "id": "1.6.4-Forge9.11.1.916",
  "inheritsFrom": "1.6.4",
  "libraries": [
    { "name": "net.minecraft:launchwrapper:1.8" },
    {
      "name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.0",
      "natives": { "linux": "natives-linux", "windows": "natives-windows-${arch}", "osx": "natives-osx" },
      "extract": { "exclude": [ "META-INF/" ] }
    },
    { "name": "org.ow2.asm:asm-all:4.1" },
    {
      "name": "ca.weblite:java-objc-bridge:1.0.0",
      "rules": [ { "action": "allow", "os": { "name": "osx" } } ]
    },
    {
      "name": "net.java.jinput:jinput:2.0.5",
      "rules": [ { "action": "allow" }, { "action": "disallow", "os": { "name": "windows" } } ]
    }
  ]
}
`

var _ = Describe("user json", func() {
	var fs vfs.FileSystem

	BeforeEach(func() {
		fs = memoryfs.New()
	})

	Context("load", func() {
		It("tolerates a missing manifest in best-effort mode", func() {
			m, err := me.Load(fs, "/pack/dev.json", me.BestEffort)
			Expect(err).To(BeNil())
			Expect(m).To(BeNil())
		})

		It("requires the manifest in authoritative mode", func() {
			_, err := me.Load(fs, "/pack/dev.json", me.Authoritative)
			var notfound *me.ManifestNotFoundError
			Expect(errors.As(err, &notfound)).To(BeTrue())
			Expect(notfound.Path).To(Equal("/pack/dev.json"))
			Expect(errors.Is(err, vfs.ErrNotExist)).To(BeTrue())
		})

		It("reads a manifest", func() {
			MustBeSuccessful(fs.MkdirAll("/pack", 0o755))
			MustBeSuccessful(vfs.WriteFile(fs, "/pack/dev.json", []byte(DEV_JSON), 0o644))

			for _, mode := range []me.Mode{me.BestEffort, me.Authoritative} {
				m := Must(me.Load(fs, "/pack/dev.json", mode))
				Expect(m.ID).To(Equal("1.6.4-Forge9.11.1.916"))
				Expect(m.InheritsFrom).To(Equal("1.6.4"))
				Expect(m.Libraries).To(HaveLen(5))
			}
		})

		It("rejects invalid manifests", func() {
			_, err := me.Parse([]byte(`{"libraries":[{"url":"x"}]}`))
			Expect(err).To(MatchError("libraries[0]: name is required"))
			_, err = me.Parse([]byte(`{"libraries":[{"name":"a:b:1","rules":[{"action":"maybe"}]}]}`))
			Expect(err).To(MatchError(`libraries[0] (a:b:1).rules[0]: invalid action "maybe"`))
		})
	})

	Context("entries", func() {
		var m *me.Manifest

		BeforeEach(func() {
			m = Must(me.Parse([]byte(DEV_JSON)))
		})

		It("selects linux libraries", func() {
			Expect(deep.Equal(m.Entries("linux"), []me.Entry{
				{Coordinate: "net.minecraft:launchwrapper:1.8"},
				{Coordinate: "org.lwjgl.lwjgl:lwjgl-platform:2.9.0:natives-linux", Native: true, Exclude: []string{"META-INF/"}},
				{Coordinate: "org.ow2.asm:asm-all:4.1"},
				{Coordinate: "net.java.jinput:jinput:2.0.5"},
			})).To(BeNil())
		})

		It("evaluates rules and architecture", func() {
			Expect(deep.Equal(m.Entries("windows"), []me.Entry{
				{Coordinate: "net.minecraft:launchwrapper:1.8"},
				{Coordinate: "org.lwjgl.lwjgl:lwjgl-platform:2.9.0:natives-windows-64", Native: true, Exclude: []string{"META-INF/"}},
				{Coordinate: "org.ow2.asm:asm-all:4.1"},
			})).To(BeNil())
		})

		It("skips natives without classifier for the platform", func() {
			Expect(m.Entries("solaris")).To(HaveLen(3))
		})
	})

	Context("apply", func() {
		It("preserves manifest order per slot", func() {
			m := &me.Manifest{Libraries: []me.Library{
				{Name: "g:a:1"},
				{Name: "g:b:1", Natives: map[string]string{"linux": "natives-linux"}},
				{Name: "g:c:1"},
			}}
			reg := configurations.NewRegistry(nil)
			MustBeSuccessful(reg.CreateSlot("lib"))
			MustBeSuccessful(reg.CreateSlot("native"))

			MustBeSuccessful(m.Apply(reg, "lib", "native", "linux"))
			Expect(Must(reg.Coordinates("lib"))).To(Equal([]string{"g:a:1", "g:c:1"}))
			Expect(Must(reg.Coordinates("native"))).To(Equal([]string{"g:b:1:natives-linux"}))

			MustBeSuccessful(m.Apply(reg, "lib", "native", "linux"))
			Expect(Must(reg.Coordinates("lib"))).To(Equal([]string{"g:a:1", "g:c:1"}))
			Expect(Must(reg.Coordinates("native"))).To(Equal([]string{"g:b:1:natives-linux"}))
		})

		It("fails for missing slots", func() {
			m := &me.Manifest{Libraries: []me.Library{{Name: "g:a:1"}}}
			err := m.Apply(configurations.NewRegistry(nil), "lib", "native", "linux")
			var unknown *configurations.UnknownSlotError
			Expect(errors.As(err, &unknown)).To(BeTrue())
		})
	})
})
