package srg_test

import (
	"bytes"
	"strings"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	me "github.com/mandelsoft/userdev/pkg/srg"
)

const PACKAGED = `
# packaged table
PK: . net/minecraft/src
CL: aqz net/minecraft/src/Block
CL: ayl net/minecraft/src/World
FD: aqz/a net/minecraft/src/Block/field_71973_m
FD: aqz/b net/minecraft/src/Block/field_71985_p
MD: aqz/a (Layl;III)V net/minecraft/src/Block/func_71847_b (Lnet/minecraft/src/World;III)V
MD: ayl/b ()V net/minecraft/src/World/func_72835_b ()V
`

const METHODS = `searge,name,side,desc
func_71847_b,updateTick,0,Ticks the block
func_72835_b,,2,
`

const FIELDS = `searge,name,side,desc
field_71973_m,blocksList,2,List of ly/ff (blocks)
`

var _ = Describe("srg", func() {
	var packaged *me.Mapping
	var methods, fields me.Names

	BeforeEach(func() {
		packaged = Must(me.Parse(strings.NewReader(PACKAGED)))
		methods = Must(me.ReadNames(strings.NewReader(METHODS)))
		fields = Must(me.ReadNames(strings.NewReader(FIELDS)))
	})

	It("parses tables", func() {
		Expect(packaged.Packages).To(Equal(map[string]string{".": "net/minecraft/src"}))
		Expect(packaged.Classes).To(HaveLen(2))
		Expect(packaged.Fields["aqz/b"]).To(Equal("net/minecraft/src/Block/field_71985_p"))
		Expect(packaged.Methods[me.Method{"ayl/b", "()V"}]).To(Equal(me.Method{"net/minecraft/src/World/func_72835_b", "()V"}))
	})

	It("rejects invalid lines", func() {
		_, err := me.Parse(strings.NewReader("CL: a\n"))
		Expect(err).To(MatchError("line 1: CL requires 2 fields, found 1"))
		_, err = me.Parse(strings.NewReader("\nXX: a b\n"))
		Expect(err).To(MatchError(`line 2: unknown entry type "XX"`))
	})

	It("reads rename tables", func() {
		Expect(methods).To(Equal(me.Names{"func_71847_b": "updateTick", "func_72835_b": ""}))
		Expect(methods.Lookup("func_72835_b")).To(Equal("func_72835_b"))
		_, err := me.ReadNames(strings.NewReader("a,b\n"))
		Expect(err).To(HaveOccurred())
	})

	It("generates the deobfuscation table", func() {
		buf := bytes.NewBuffer(nil)
		MustBeSuccessful(me.Deobf(packaged, methods, fields).Write(buf))
		Expect(buf.String()).To(Equal(`PK: net/minecraft/src net/minecraft/src
CL: net/minecraft/src/Block net/minecraft/src/Block
CL: net/minecraft/src/World net/minecraft/src/World
FD: net/minecraft/src/Block/field_71973_m net/minecraft/src/Block/blocksList
FD: net/minecraft/src/Block/field_71985_p net/minecraft/src/Block/field_71985_p
MD: net/minecraft/src/Block/func_71847_b (Lnet/minecraft/src/World;III)V net/minecraft/src/Block/updateTick (Lnet/minecraft/src/World;III)V
MD: net/minecraft/src/World/func_72835_b ()V net/minecraft/src/World/func_72835_b ()V
`))
	})

	It("generates the reobfuscation table", func() {
		m := me.Reverse(me.Deobf(packaged, methods, fields))
		Expect(m.Fields).To(HaveKeyWithValue("net/minecraft/src/Block/blocksList", "net/minecraft/src/Block/field_71973_m"))
		Expect(m.Methods).To(HaveKeyWithValue(
			me.Method{"net/minecraft/src/Block/updateTick", "(Lnet/minecraft/src/World;III)V"},
			me.Method{"net/minecraft/src/Block/func_71847_b", "(Lnet/minecraft/src/World;III)V"},
		))
	})

	It("writes deterministically", func() {
		a := bytes.NewBuffer(nil)
		b := bytes.NewBuffer(nil)
		MustBeSuccessful(packaged.Write(a))
		MustBeSuccessful(Must(me.Parse(bytes.NewReader(a.Bytes()))).Write(b))
		Expect(b.String()).To(Equal(a.String()))
	})
})
