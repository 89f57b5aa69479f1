/*
Copyright 2025 The clientkit Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// clientkit-watch streams changes to one resource collection to stdout.
// It is the smallest complete consumer of the library: kubeconfig in,
// events out.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-logr/zapr"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kubeworks/clientkit/pkg/client"
	"github.com/kubeworks/clientkit/pkg/kubeconfig"
	"github.com/kubeworks/clientkit/pkg/logging"
	"github.com/kubeworks/clientkit/pkg/schema"
	"github.com/kubeworks/clientkit/pkg/transport"
	"github.com/kubeworks/clientkit/pkg/unstructured"
)

func main() {
	var (
		configPath    string
		contextName   string
		namespace     string
		group         string
		version       string
		resource      string
		clusterScoped bool
		labelSelector string
		debug         bool
	)

	pflag.StringVar(&configPath, "kubeconfig", "", "Path to the kubeconfig file (defaults to the KUBECONFIG search path)")
	pflag.StringVar(&contextName, "context", "", "Kubeconfig context to use (defaults to the current context)")
	pflag.StringVar(&namespace, "namespace", "", "Namespace to watch (defaults to the context's namespace)")
	pflag.StringVar(&group, "group", "", "API group of the resource (empty for the core group)")
	pflag.StringVar(&version, "version", "v1", "API version of the resource")
	pflag.StringVar(&resource, "resource", "pods", "Plural resource name to watch")
	pflag.BoolVar(&clusterScoped, "cluster-scoped", false, "Watch the resource across the whole cluster")
	pflag.StringVar(&labelSelector, "label-selector", "", "Label selector to filter the collection")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")
	pflag.Parse()

	zapCfg := zap.NewProductionConfig()
	if debug {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zl, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer zl.Sync() //nolint:errcheck // Nothing to do about a failed flush at exit.

	setupLog := zapr.NewLogger(zl).WithName("setup")
	log := logging.NewLogrLogger(zapr.NewLogger(zl).WithName("clientkit"))

	paths := kubeconfig.DefaultPath()
	if configPath != "" {
		paths = filepath.SplitList(configPath)
	}

	fs := afero.NewOsFs()
	cfg, err := kubeconfig.Load(fs, paths...)
	if err != nil {
		setupLog.Error(err, "unable to load kubeconfig")
		os.Exit(1)
	}
	restCfg, err := cfg.RESTConfig(fs, contextName)
	if err != nil {
		setupLog.Error(err, "unable to resolve kubeconfig context")
		os.Exit(1)
	}
	exec, err := transport.New(*restCfg, transport.WithLogger(log))
	if err != nil {
		setupLog.Error(err, "unable to build transport")
		os.Exit(1)
	}

	r := schema.Resource{
		Group:      group,
		Version:    version,
		Resource:   resource,
		Namespaced: !clusterScoped,
	}
	if r.Namespaced && namespace == "" {
		namespace = cfg.Namespace(contextName)
	}

	c := client.NewDynamic(exec, r, client.WithLogger[*unstructured.Unstructured](log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := c.ListWatch(ctx, namespace, client.ListOptions{LabelSelector: labelSelector})
	defer w.Stop()

	for ev := range w.ResultChan() {
		log.Info("Event",
			"type", ev.Type,
			"namespace", ev.Object.GetNamespace(),
			"name", ev.Object.GetName(),
			"resourceVersion", ev.Object.GetResourceVersion(),
		)
	}
	if err := w.Err(); err != nil {
		setupLog.Error(err, "watch terminated")
		os.Exit(1)
	}
}
