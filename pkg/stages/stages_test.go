package stages_test

import (
	"context"
	"errors"
	"path/filepath"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/configurations"
	"github.com/mandelsoft/userdev/pkg/delayed"
	me "github.com/mandelsoft/userdev/pkg/stages"
	"github.com/mandelsoft/userdev/pkg/taskgraph"
	"github.com/mandelsoft/userdev/pkg/testutils"
)

type remapper struct {
	requests []me.RemapRequest
}

func (r *remapper) Remap(ctx context.Context, fs vfs.FileSystem, req me.RemapRequest) error {
	r.requests = append(r.requests, req)
	data, err := vfs.ReadFile(fs, req.In)
	if err != nil {
		return err
	}
	return testutils.WriteFile(fs, req.Out, string(data))
}

var _ = Describe("stages", func() {
	var fs vfs.FileSystem
	var env *me.Env
	var tokens delayed.Tokens
	var cur delayed.Context

	file := func(t string) delayed.File { return delayed.NewFile(t, tokens) }

	BeforeEach(func() {
		fs = memoryfs.New()
		tokens = delayed.Merge(delayed.BaseTokens, delayed.Tokens{
			"API_NAME":    delayed.Constant("forge"),
			"API_VERSION": func(c delayed.Context) string { return c.ApiVersion },
		})
		cur = delayed.Context{
			ProjectDir: testutils.PROJECT_DIR,
			BuildDir:   testutils.PROJECT_DIR + "/build",
			CacheDir:   testutils.CACHE_DIR,
			McVersion:  testutils.MC_VERSION,
			ApiVersion: testutils.FORGE_VERSION,
			OS:         "linux",
			Extra:      map[string]string{"MIRROR": testutils.MIRROR},
		}
		env = &me.Env{
			FS:      fs,
			Context: func() delayed.Context { return cur },
		}
		MustBeSuccessful(testutils.Setup(fs, "net.minecraftforge:forge:"+testutils.FORGE_VERSION))
	})

	Context("merge", func() {
		var stage *me.MergeJars

		BeforeEach(func() {
			versions := filepath.Join(testutils.MIRROR, "versions", testutils.MC_VERSION)
			MustBeSuccessful(testutils.WriteFile(fs, "/cfg/merge.cfg", testutils.MERGE_CFG))
			stage = &me.MergeJars{
				Client:   file(versions + "/{MC_VERSION}.jar"),
				Server:   file(versions + "/minecraft_server.{MC_VERSION}.jar"),
				MergeCfg: file("/cfg/merge.cfg"),
				OutJar:   file(me.JAR_MERGED),
			}
		})

		It("merges client and server", func() {
			MustBeSuccessful(stage.Run(context.Background(), env))
			out := stage.OutJar.Resolve(cur)
			Expect(out).To(Equal("/cache/minecraft/net/minecraft/minecraft_merged/1.6.4/minecraft_merged-1.6.4.jar"))
			Expect(Must(testutils.ArchiveContent(fs, out))).To(Equal(map[string]string{
				"aqz.class":                       "client block",
				"ayl.class":                       "client world",
				"bcx.class":                       "client only",
				"net/minecraft/server/Main.class": "server main",
				"org/bouncycastle/Crypto.class":   "server crypto",
			}))
		})

		It("produces byte-identical results", func() {
			MustBeSuccessful(stage.Run(context.Background(), env))
			first := Must(vfs.ReadFile(fs, stage.OutJar.Resolve(cur)))

			stage.OutJar = file("/other/merged.jar")
			MustBeSuccessful(stage.Run(context.Background(), env))
			second := Must(vfs.ReadFile(fs, "/other/merged.jar"))
			Expect(second).To(Equal(first))
		})

		It("rejects invalid rules", func() {
			MustBeSuccessful(testutils.WriteFile(fs, "/cfg/merge.cfg", "^a\nb\n"))
			err := stage.Run(context.Background(), env)
			Expect(err).To(MatchError(`merge config /cfg/merge.cfg: line 2: invalid merge rule "b"`))
		})

		It("rejects non archives", func() {
			MustBeSuccessful(testutils.WriteFile(fs, "/cfg/client.jar", "plain text"))
			stage.Client = file("/cfg/client.jar")
			err := stage.Run(context.Background(), env)
			var noarch *me.NoArchiveError
			Expect(errors.As(err, &noarch)).To(BeTrue())
		})
	})

	Context("extract", func() {
		It("extracts a bound source", func() {
			stage := &me.Extract{Into: delayed.NewFileTree(me.PACK_DIR, tokens)}
			Expect(stage.Run(context.Background(), env)).To(MatchError("extract source not configured"))

			stage.From = file(testutils.ArtifactPath(testutils.REPOSITORY, "net.minecraftforge:forge:"+testutils.FORGE_VERSION+":userdev"))
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(vfs.ReadFile(fs, file(me.JSON).Resolve(cur)))).To(Equal([]byte(testutils.DEV_JSON)))
			Expect(Must(stage.Into.Files(fs, cur))).To(ContainElements("conf/packaged.srg", "dev.json"))
		})

		It("removes entries of a former source", func() {
			MustBeSuccessful(testutils.Archive(fs, "/dist/old.jar", map[string]string{"dev.json": "{}", "conf/old.cfg": "old"}))
			MustBeSuccessful(testutils.Archive(fs, "/dist/new.jar", map[string]string{"dev.json": testutils.DEV_JSON}))

			stage := &me.Extract{From: file("/dist/old.jar"), Into: delayed.NewFileTree(me.PACK_DIR, tokens)}
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(stage.Into.Files(fs, cur))).To(Equal([]string{"conf/old.cfg", "dev.json"}))

			stage.From = file("/dist/new.jar")
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(stage.Into.Files(fs, cur))).To(Equal([]string{"dev.json"}))
			Expect(Must(vfs.ReadFile(fs, file(me.JSON).Resolve(cur)))).To(Equal([]byte(testutils.DEV_JSON)))
		})

		It("extracts natives", func() {
			reg := configurations.NewRegistry(configurations.NewLocalRepository([]string{testutils.REPOSITORY}, fs))
			MustBeSuccessful(reg.CreateSlot("natives"))
			MustBeSuccessful(reg.AddCoordinate("natives", testutils.NATIVES[0]))
			env.Registry = reg

			stage := &me.ExtractNatives{Slot: "natives", Into: delayed.NewFileTree(me.NATIVES_DIR, tokens)}
			stage.AddExcludes("META-INF/")
			stage.AddExcludes("META-INF/")
			Expect(stage.Exclude).To(Equal([]string{"META-INF/"}))

			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(stage.Into.Files(fs, cur))).To(Equal([]string{"liblwjgl.so"}))
		})
	})

	Context("mapping tables", func() {
		It("generates tables", func() {
			dir := "/conf"
			MustBeSuccessful(testutils.WriteFile(fs, dir+"/packaged.srg", testutils.PACKAGED_SRG))
			MustBeSuccessful(testutils.WriteFile(fs, dir+"/methods.csv", testutils.METHODS_CSV))
			MustBeSuccessful(testutils.WriteFile(fs, dir+"/fields.csv", testutils.FIELDS_CSV))
			stage := &me.GenSrgs{
				InSrg:      file(dir + "/packaged.srg"),
				MethodsCsv: file(dir + "/methods.csv"),
				FieldsCsv:  file(dir + "/fields.csv"),
				DeobfSrg:   file(me.DEOBF_SRG),
				ReobfSrg:   file(me.REOBF_SRG),
			}
			MustBeSuccessful(stage.Run(context.Background(), env))
			deobf := string(Must(vfs.ReadFile(fs, stage.DeobfSrg.Resolve(cur))))
			Expect(deobf).To(ContainSubstring("FD: net/minecraft/src/Block/field_71973_m net/minecraft/src/Block/blocksList\n"))
			reobf := string(Must(vfs.ReadFile(fs, stage.ReobfSrg.Resolve(cur))))
			Expect(reobf).To(ContainSubstring("FD: net/minecraft/src/Block/blocksList net/minecraft/src/Block/field_71973_m\n"))
		})
	})

	Context("download", func() {
		It("downloads from the mirror", func() {
			stage := &me.Download{
				URL:    delayed.NewString(me.MC_JAR_URL, tokens),
				OutJar: file(me.JAR_CLIENT_FRESH),
			}
			Expect(stage.URL.Resolve(cur)).To(Equal("/mirror/versions/1.6.4/1.6.4.jar"))
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(testutils.ArchiveContent(fs, stage.OutJar.Resolve(cur)))).To(Equal(testutils.ClientFiles()))
		})

		It("keeps existing files", func() {
			stage := &me.Download{
				URL:    delayed.NewString("file:///missing.jar", tokens),
				OutJar: file("/present.jar"),
			}
			MustBeSuccessful(testutils.WriteFile(fs, "/present.jar", "old"))
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(Must(vfs.ReadFile(fs, "/present.jar"))).To(Equal([]byte("old")))
		})
	})

	Context("remapping", func() {
		var stage *me.ProcessJar

		BeforeEach(func() {
			MustBeSuccessful(testutils.WriteFile(fs, "/in/merged.jar", "merged"))
			stage = &me.ProcessJar{
				InJar:       file("/in/merged.jar"),
				ExceptorJar: file("/in/exceptor.jar"),
				Srg:         file("/in/packaged.srg"),
				ExceptorCfg: file("/in/packaged.exc"),
				OutCleanJar: file(me.JAR_SRG),
			}
			stage.AddTransformers(file("/in/fml_at.cfg"), file("/in/forge_at.cfg"))
		})

		It("requires a remapper", func() {
			Expect(errors.Is(stage.Run(context.Background(), env), me.ErrNoService)).To(BeTrue())
		})

		It("passes resolved parameters", func() {
			r := &remapper{}
			env.Services.Remapper = r
			MustBeSuccessful(stage.Run(context.Background(), env))
			Expect(r.requests).To(Equal([]me.RemapRequest{{
				In:           "/in/merged.jar",
				Out:          "/cache/minecraft/net/minecraftforge/forge/1.6.4-9.11.1.964/forge-1.6.4-9.11.1.964-srg.jar",
				Srg:          "/in/packaged.srg",
				Exceptor:     "/in/exceptor.jar",
				ExceptorCfg:  "/in/packaged.exc",
				Transformers: []string{"/in/fml_at.cfg", "/in/forge_at.cfg"},
			}}))
		})

		It("checks inputs", func() {
			err := me.CheckInputs(stage, env)
			var missing *me.MissingInputError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Role).To(Equal("exceptorCfg"))
			Expect(err).To(MatchError(`input "exceptorCfg" (/in/packaged.exc) not found`))
		})
	})

	Context("tasks", func() {
		It("skips up-to-date stages", func() {
			MustBeSuccessful(testutils.WriteFile(fs, "/cfg/merge.cfg", testutils.MERGE_CFG))
			g := taskgraph.New(nil, 1)
			Must(me.Register(g, me.DOWNLOAD_CLIENT, &me.Download{
				URL:    delayed.NewString(me.MC_JAR_URL, tokens),
				OutJar: file(me.JAR_CLIENT_FRESH),
			}, env))
			Must(me.Register(g, me.DOWNLOAD_SERVER, &me.Download{
				URL:    delayed.NewString(me.MC_SERVER_URL, tokens),
				OutJar: file(me.JAR_SERVER_FRESH),
			}, env))
			Must(me.Register(g, me.MERGE_JARS, &me.MergeJars{
				Client:   file(me.JAR_CLIENT_FRESH),
				Server:   file(me.JAR_SERVER_FRESH),
				MergeCfg: file("/cfg/merge.cfg"),
				OutJar:   file(me.JAR_MERGED),
			}, env)).DependsOn(me.DOWNLOAD_CLIENT, me.DOWNLOAD_SERVER)

			res := Must(g.Run(context.Background(), me.MERGE_JARS))
			Expect(res.Executed).To(Equal([]string{me.DOWNLOAD_CLIENT, me.DOWNLOAD_SERVER, me.MERGE_JARS}))

			res = Must(g.Run(context.Background(), me.MERGE_JARS))
			Expect(res.Executed).To(BeEmpty())

			MustBeSuccessful(testutils.WriteFile(fs, file(me.JAR_MERGED).Resolve(cur), "modified"))
			res = Must(g.Run(context.Background(), me.MERGE_JARS))
			Expect(res.Executed).To(Equal([]string{me.MERGE_JARS}))
		})

		It("reports missing inputs", func() {
			g := taskgraph.New(nil, 1)
			Must(me.Register(g, me.MERGE_JARS, &me.MergeJars{
				Client: file(me.JAR_CLIENT_FRESH),
				Server: file(me.JAR_SERVER_FRESH),
				OutJar: file(me.JAR_MERGED),
			}, env))
			_, err := g.Run(context.Background(), me.MERGE_JARS)
			var missing *me.MissingInputError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Role).To(Equal("client"))
		})
	})

	It("expands command lines", func() {
		cmd := &me.Command{Args: []string{"java", "-jar", "remap.jar", "--in={in}", "--out", "{out}", "{transformers}", "--all={transformers}", "{unknown}"}}
		Expect(cmd.Expand(map[string]string{"in": "a.jar", "out": "b.jar"}, []string{"x.cfg", "y.cfg"})).To(Equal([]string{
			"java", "-jar", "remap.jar", "--in=a.jar", "--out", "b.jar", "x.cfg", "y.cfg", "--all=x.cfg,y.cfg", "{unknown}",
		}))
	})
})
