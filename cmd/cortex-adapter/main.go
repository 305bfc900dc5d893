// Command cortex-adapter is the out-of-process adapter entry point of
// §4.4: it serves the wire protocol over the socket inherited at fd 3 from
// a spawning harness, loading a kernel plugin (or falling back to the
// in-process identity kernel when none is given) and running until BYE.
//
// Positional args: cortex-adapter [plugin.so]
// Parsing a full YAML/CLI config here is orchestration glue outside this
// module's scope; real deployments wrap this binary with their own.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/westonvoglesonger/cortex/adapterhost"
	"github.com/westonvoglesonger/cortex/kernelabi"
	"github.com/westonvoglesonger/cortex/transport"
)

const inheritedSocketFD = 3

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())

	conn, err := transport.AdapterSideFromInheritedFD(inheritedSocketFD)
	if err != nil {
		log.Fatalf("adapter: %v", err)
	}
	defer conn.Close()

	var pluginPath string
	if len(os.Args) > 1 {
		pluginPath = os.Args[1]
	}

	factory := func(specURI string) (kernelabi.Kernel, error) {
		if pluginPath == "" {
			return kernelabi.NewIdentityKernel(), nil
		}
		return loadPluginKernel(pluginPath)
	}

	host := adapterhost.New(conn, "cortex-adapter", uint32(os.Getpid()), 1<<20, 256, []string{"*"}, factory, log)
	if err := host.Run(); err != nil {
		log.Fatalf("adapter: %v", err)
	}
}
