package stages

// Path templates. They are resolved against the workspace
// context whenever they are read.
const (
	MC_DIR = "{CACHE_DIR}/minecraft/net/minecraft"

	JAR_CLIENT_FRESH = MC_DIR + "/minecraft/{MC_VERSION}/minecraft-{MC_VERSION}.jar"
	JAR_SERVER_FRESH = MC_DIR + "/minecraft_server/{MC_VERSION}/minecraft_server-{MC_VERSION}.jar"
	JAR_MERGED       = MC_DIR + "/minecraft_merged/{MC_VERSION}/minecraft_merged-{MC_VERSION}.jar"
	EXCEPTOR         = "{CACHE_DIR}/minecraft/net/minecraftforge/fml/exceptor.jar"

	API_DIR  = "{CACHE_DIR}/minecraft/net/minecraftforge/{API_NAME}/{API_VERSION}"
	PACK_DIR = API_DIR + "/unpacked"
	JAR_SRG  = API_DIR + "/{API_NAME}-{API_VERSION}-srg.jar"

	JSON         = PACK_DIR + "/dev.json"
	MERGE_CFG    = PACK_DIR + "/conf/mcp_merge.cfg"
	PACKAGED_SRG = PACK_DIR + "/conf/packaged.srg"
	PACKAGED_EXC = PACK_DIR + "/conf/packaged.exc"
	METHOD_CSV   = PACK_DIR + "/conf/methods.csv"
	FIELD_CSV    = PACK_DIR + "/conf/fields.csv"
	DEOBF_SRG    = API_DIR + "/srgs/srg-mcp.srg"
	REOBF_SRG    = API_DIR + "/srgs/mcp-srg.srg"
	BINPATCHES   = PACK_DIR + "/devbinpatches.pack.lzma"
	FML_AT       = PACK_DIR + "/src/main/resources/fml_at.cfg"
	FORGE_AT     = PACK_DIR + "/src/main/resources/forge_at.cfg"

	NATIVES_DIR = "{BUILD_DIR}/natives"
)

// Download locations. MIRROR is expected as extra
// context token.
const (
	MC_JAR_URL    = "{MIRROR}/versions/{MC_VERSION}/{MC_VERSION}.jar"
	MC_SERVER_URL = "{MIRROR}/versions/{MC_VERSION}/minecraft_server.{MC_VERSION}.jar"
	EXCEPTOR_URL  = "{MIRROR}/tools/exceptor.jar"
)

// Task names.
const (
	EXTRACT_USERDEV   = "extractUserDev"
	MERGE_JARS        = "mergeJars"
	GEN_SRGS          = "genSrgs"
	DEOBFUSCATE_JAR   = "deobfuscateJar"
	DOWNLOAD_CLIENT   = "downloadClient"
	DOWNLOAD_SERVER   = "downloadServer"
	DOWNLOAD_MCPTOOLS = "downloadMcpTools"
	APPLY_BINPATCHES  = "applyBinPatches"
	EXTRACT_NATIVES   = "extractNatives"
)
