package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	hzapp "github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/cobra"

	"resume-screener/internal/api/handler"
	"resume-screener/internal/api/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP API",
	RunE:  runServe,
}

var serveAddress string

func init() {
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "Listen address, overrides server.address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogger(cfg.Logger)
	glog.Infof("%s %s 配置加载成功", serviceName, version)

	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := buildApp(ctx, cfg, 0)
	if err != nil {
		return err
	}
	models, def := a.screener.Models()
	glog.Infof("筛选器初始化成功，可用模型: %v，默认: %s", models, def)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	serverOpts := []config.Option{
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	}
	if cfg.Server.MaxRequestBodyMB > 0 {
		serverOpts = append(serverOpts, server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyMB<<20))
	}
	h := server.New(serverOpts...)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(requestLogger)

	router.RegisterRoutes(h, handler.NewScreeningHandler(a.screener), cfg.Server.APIKeys)
	if len(cfg.Server.APIKeys) == 0 {
		glog.Warn("未配置 API Key，接口对所有请求开放")
	}
	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	runErr := make(chan error, 1)
	go func() {
		runErr <- h.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	serveErr := waitForShutdown(runErr, quit)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if serveErr == nil {
		if err := h.Shutdown(shutdownCtx); err != nil {
			glog.Errorf("服务器关闭失败: %v", err)
		}
	}
	a.Close(shutdownCtx)
	if serveErr != nil {
		return serveErr
	}
	glog.Info("优雅退出完成")
	return nil
}

// waitForShutdown 等待终止信号或服务器提前退出（例如端口被占用），后者返回错误
func waitForShutdown(runErr <-chan error, quit <-chan os.Signal) error {
	select {
	case err := <-runErr:
		if err == nil {
			err = errors.New("HTTP 服务器意外退出")
		}
		glog.Errorf("HTTP 服务器退出: %v", err)
		return fmt.Errorf("http server stopped: %w", err)
	case sig := <-quit:
		glog.Infof("接收到终止信号 %s，正在优雅退出...", sig)
		return nil
	}
}

func requestLogger(c context.Context, ctx *hzapp.RequestContext) {
	glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
	ctx.Next(c)
	glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
}
