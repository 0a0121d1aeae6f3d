package testutils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Test workspace layout.
const (
	PROJECT_DIR = "/project"
	CACHE_DIR   = "/cache"
	REPOSITORY  = "/repository"
	MIRROR      = "/mirror"

	MC_VERSION    = "1.6.4"
	FORGE_VERSION = "1.6.4-9.11.1.964"
	FML_VERSION   = "1.6.4-6.4.49.965"
)

const DEV_JSON = `{
  "id": "1.6.4-Forge9.11.1.964",
  "inheritsFrom": "1.6.4",
  "mainClass": "net.minecraft.launchwrapper.Launch",
  "libraries": [
    { "name": "net.minecraft:launchwrapper:1.8" },
    {
      "name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.0",
      "natives": { "linux": "natives-linux", "windows": "natives-windows", "osx": "natives-osx" },
      "extract": { "exclude": [ "META-INF/" ] }
    },
    { "name": "org.ow2.asm:asm-all:4.1" },
    {
      "name": "ca.weblite:java-objc-bridge:1.0.0",
      "rules": [ { "action": "allow", "os": { "name": "osx" } } ]
    }
  ]
}
`

const PACKAGED_SRG = `PK: . net/minecraft/src
CL: aqz net/minecraft/src/Block
CL: ayl net/minecraft/src/World
FD: aqz/a net/minecraft/src/Block/field_71973_m
MD: aqz/a (Layl;III)V net/minecraft/src/Block/func_71847_b (Lnet/minecraft/src/World;III)V
`

const METHODS_CSV = `searge,name,side,desc
func_71847_b,updateTick,0,Ticks the block
`

const FIELDS_CSV = `searge,name,side,desc
field_71973_m,blocksList,2,List of blocks
`

const MERGE_CFG = `# merge rules
^org/bouncycastle
!META-INF/MOJANG
`

// Libraries provided by the dev json for linux.
var LIBRARIES = []string{
	"net.minecraft:launchwrapper:1.8",
	"org.ow2.asm:asm-all:4.1",
}

var NATIVES = []string{
	"org.lwjgl.lwjgl:lwjgl-platform:2.9.0:natives-linux",
}

// UserDevFiles is the content of a userdev distribution.
func UserDevFiles() map[string]string {
	return map[string]string{
		"dev.json":                        DEV_JSON,
		"conf/packaged.srg":               PACKAGED_SRG,
		"conf/packaged.exc":               "net/minecraft/src/Block.func_71847_b(Lnet/minecraft/src/World;III)V=|p_71847_1_,p_71847_2_\n",
		"conf/methods.csv":                METHODS_CSV,
		"conf/fields.csv":                 FIELDS_CSV,
		"conf/mcp_merge.cfg":              MERGE_CFG,
		"devbinpatches.pack.lzma":         "binary patches",
		"src/main/resources/fml_at.cfg":   "public aqz.a\n",
		"src/main/resources/forge_at.cfg": "public ayl.b\n",
	}
}

func ClientFiles() map[string]string {
	return map[string]string{
		"aqz.class":                     "client block",
		"ayl.class":                     "client world",
		"bcx.class":                     "client only",
		"org/bouncycastle/Crypto.class": "client crypto",
		"META-INF/MOJANG.SF":            "signature",
	}
}

func ServerFiles() map[string]string {
	return map[string]string{
		"aqz.class":                       "server block",
		"ayl.class":                       "server world",
		"net/minecraft/server/Main.class": "server main",
		"org/bouncycastle/Crypto.class":   "server crypto",
	}
}

// ArtifactPath returns the repository path for a coordinate
// group:name:version[:classifier].
func ArtifactPath(root, coordinate string) string {
	parts := strings.Split(coordinate, ":")
	file := parts[1] + "-" + parts[2]
	if len(parts) > 3 {
		file += "-" + parts[3]
	}
	return filepath.Join(root, filepath.FromSlash(path.Join(strings.ReplaceAll(parts[0], ".", "/"), parts[1], parts[2], file+".jar")))
}

// Setup creates a local repository with the userdev distribution
// of the given notation (group:name:version) and the libraries
// of the dev json, and a download mirror with the client and
// server archives.
func Setup(fs vfs.FileSystem, notation string) error {
	if err := Archive(fs, ArtifactPath(REPOSITORY, notation+":userdev"), UserDevFiles()); err != nil {
		return err
	}
	for _, l := range LIBRARIES {
		if err := Archive(fs, ArtifactPath(REPOSITORY, l), map[string]string{"lib.class": l}); err != nil {
			return err
		}
	}
	for _, n := range NATIVES {
		if err := Archive(fs, ArtifactPath(REPOSITORY, n), map[string]string{
			"liblwjgl.so":          "native",
			"META-INF/MANIFEST.MF": "manifest",
		}); err != nil {
			return err
		}
	}
	versions := filepath.Join(MIRROR, "versions", MC_VERSION)
	if err := Archive(fs, filepath.Join(versions, MC_VERSION+".jar"), ClientFiles()); err != nil {
		return err
	}
	if err := Archive(fs, filepath.Join(versions, fmt.Sprintf("minecraft_server.%s.jar", MC_VERSION)), ServerFiles()); err != nil {
		return err
	}
	return Archive(fs, filepath.Join(MIRROR, "tools", "exceptor.jar"), map[string]string{"exceptor/Main.class": "exceptor"})
}
